package main

// Batch input for drain-batch. Each row: label,key_or_keystore[,password].
// The second column is either a hex private key or the path of a V3 keystore,
// relative paths being resolved against the CSV directory. A first row whose
// first cell is "label" is a header; lines starting with # are ignored.

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ligun0805/bzz-drain/internal/keys"
)

var hexKey = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

type jobRow struct {
	label    string
	key      string
	keystore string
	password string
}

func (r jobRow) account() (*keys.Account, error) {
	if r.key != "" {
		return keys.ParsePrivateKey(r.key)
	}
	return keys.UnlockKeystore(r.keystore, r.password)
}

func readJobsCSV(path string) ([]jobRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "label") {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New("CSV has no accounts")
	}

	dir := filepath.Dir(path)
	rows := make([]jobRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("CSV row %d: expected label and key or keystore", i+1)
		}
		row := jobRow{label: strings.TrimSpace(rec[0])}
		if row.label == "" {
			row.label = fmt.Sprintf("row-%d", i+1)
		}
		source := strings.TrimSpace(rec[1])
		switch {
		case hexKey.MatchString(source):
			row.key = source
		case source == "":
			return nil, fmt.Errorf("CSV row %d (%s): empty key", i+1, row.label)
		default:
			if !filepath.IsAbs(source) {
				source = filepath.Join(dir, source)
			}
			row.keystore = source
			if len(rec) > 2 {
				row.password = rec[2]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
