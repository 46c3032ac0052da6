package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/bzz-drain/internal/chain"
	"github.com/ligun0805/bzz-drain/internal/keys"
	"github.com/ligun0805/bzz-drain/internal/units"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bzzdrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	st := Default()

	assert.NoError(t, st.Validate())
	assert.Equal(t, int64(100), st.ChainID)
	assert.Equal(t, 16, st.TokenDecimals)
	assert.Equal(t, 18, st.NativeDecimals)
	assert.Equal(t, uint64(29_000_000), st.SwapGasLimit)
	assert.Equal(t, chain.FeeLegacy, st.FeeMode)
}

func TestLoad(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("RPC_URL", "http://localhost:8545")
		t.Setenv("chain_id", "10200")
		t.Setenv("CONFIRM_TIMEOUT", "90s")
		t.Setenv("FEE_MODE", "DYNAMIC")
		t.Setenv("CONCURRENCY", "4")
		t.Setenv("SAFE_SUB_VALUE", "0.002")

		st := Load()

		assert.Equal(t, "http://localhost:8545", st.RPCURL)
		assert.Equal(t, int64(10200), st.ChainID)
		assert.Equal(t, 90*time.Second, st.ConfirmTimeout)
		assert.Equal(t, chain.FeeDynamic, st.FeeMode)
		assert.Equal(t, 4, st.Concurrency)
		assert.Equal(t, "0.002", st.SafeSubValue)
		assert.NoError(t, st.Validate())
	})

	t.Run("lower case key wins over upper case", func(t *testing.T) {
		t.Setenv("metrics_file", "/tmp/lower.prom")
		t.Setenv("METRICS_FILE", "/tmp/upper.prom")

		st := Load()

		assert.Equal(t, "/tmp/lower.prom", st.MetricsFile)
	})

	t.Run("unparsable numbers keep defaults", func(t *testing.T) {
		t.Setenv("SWAP_GAS_LIMIT", "lots")
		t.Setenv("DIAL_TIMEOUT", "soon")

		st := Load()

		assert.Equal(t, uint64(29_000_000), st.SwapGasLimit)
		assert.Equal(t, 30*time.Second, st.DialTimeout)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Setenv("BZZ_TEST_NODE", "http://node.local:8545")
		t.Setenv("CONCURRENCY", "3")

		path := writeFile(t, `
rpc_url: ${BZZ_TEST_NODE}
chain_id: 100
ignore_threshold: "0.02"
swap_deadline: 5m
concurrency: 8
fee_mode: dynamic
basefee_mul: 3
`)

		st, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "http://node.local:8545", st.RPCURL)
		assert.Equal(t, "0.02", st.IgnoreThreshold)
		assert.Equal(t, 5*time.Minute, st.SwapDeadline)
		assert.Equal(t, chain.FeeDynamic, st.FeeMode)
		assert.Equal(t, int64(3), st.BasefeeMul)
		// environment wins over the file
		assert.Equal(t, 3, st.Concurrency)
		// untouched keys keep their defaults
		assert.Equal(t, "0.1", st.RescueValue)
		assert.NoError(t, st.Validate())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "relays: https://relay.invalid\n")

		_, err := LoadFile(path)

		assert.Error(t, err)
	})
}

func TestSettings_Validate(t *testing.T) {
	t.Run("accepts node endpoints", func(t *testing.T) {
		for _, endpoint := range []string{
			"https://rpc.gnosischain.com",
			"http://127.0.0.1:8545",
			"wss://node.local/ws",
			"/var/run/nethermind/nethermind.ipc",
		} {
			st := Default()
			st.RPCURL = endpoint
			assert.NoError(t, st.Validate(), endpoint)
		}
	})

	t.Run("rejects other endpoints", func(t *testing.T) {
		for _, endpoint := range []string{"not a url", "ftp://node.local", "http://", "node.local:8545"} {
			st := Default()
			st.RPCURL = endpoint
			assert.Error(t, st.Validate(), endpoint)
		}
	})

	t.Run("reports every problem", func(t *testing.T) {
		st := Default()
		st.RPCURL = "not a url"
		st.TokenAddress = "0x1234"
		st.FeeMode = "turbo"
		st.IgnoreThreshold = "1,5"
		st.Concurrency = 0

		err := st.Validate()
		require.Error(t, err)

		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.Len(t, merr.Errors, 5)
		assert.ErrorIs(t, err, units.ErrInvalidNumberFormat)
	})

	t.Run("invalid rescue key is not echoed", func(t *testing.T) {
		st := Default()
		st.RescuePrivateKeyHex = "0xdeadbeefsecret"

		err := st.Validate()

		assert.ErrorIs(t, err, keys.ErrInvalidPrivateKey)
		assert.NotContains(t, err.Error(), "deadbeef")
	})

	t.Run("valid rescue key", func(t *testing.T) {
		st := Default()
		st.RescuePrivateKeyHex = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

		assert.NoError(t, st.Validate())
	})
}

func TestSettings_Conversions(t *testing.T) {
	st := Default()

	endpoint := st.Endpoint()
	assert.Equal(t, "https://rpc.gnosischain.com", endpoint.URL)
	assert.Equal(t, int64(100), endpoint.ChainID.Int64())

	contracts := st.Contracts()
	assert.Equal(t, common.HexToAddress("0xdBF3Ea6F5beE45c02255B2c26a16F300502F68da"), contracts.Token)
	assert.Equal(t, common.HexToAddress("0x1C232F01118CB8B424793ae03F870aa7D0ac7f77"), contracts.Router)
	assert.Equal(t, common.HexToAddress("0xe91d153e0b41518a2ce8dd3d7944fa863463a97d"), contracts.WrappedNative)

	th, err := st.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000", th.Ignore.String())
	assert.Equal(t, "100000000000000000", th.Rescue.String())
	assert.Equal(t, "8000000000000000", th.SafeSub.String())

	st.RescueValue = "abc"
	_, err = st.Thresholds()
	assert.ErrorIs(t, err, units.ErrInvalidNumberFormat)
}
