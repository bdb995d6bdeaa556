package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"coin-design-enrich/pkg/model"
	"coin-design-enrich/pkg/repair"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxLineBytes = 32 * 1024 * 1024

// completionPath is where a chat completion sits inside a batch output envelope.
var completionPath = []any{"response", "body", "choices", 0, "message", "content"}

// MissingKeyError reports that an envelope lacks part of completionPath.
type MissingKeyError struct {
	Key any
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key error: %v", e.Key)
}

// ParseResult is what a batch output file yielded.
type ParseResult struct {
	Records   []model.Record
	Lines     int
	Envelopes int
	Skipped   int
}

// ParseResults reads a batch output file, normalizes every completion and
// flattens the records. Undecodable lines and envelopes without a completion
// are logged and skipped. A completion that cannot be repaired, or a record
// without design_id, fails the whole parse.
func ParseResults(r io.Reader) (*ParseResult, error) {
	res := &ParseResult{}
	var envelopes []map[string]any

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		res.Lines++
		var env map[string]any
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			zap.S().Errorf("error decoding line %d: %v", res.Lines, err)
			res.Skipped++
			continue
		}
		envelopes = append(envelopes, env)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read batch results")
	}
	res.Envelopes = len(envelopes)
	zap.S().Infof("parsed %d json objects", len(envelopes))

	for _, env := range envelopes {
		content, err := Completion(env)
		if err != nil {
			zap.S().Errorf("%v (custom_id=%v)", err, env["custom_id"])
			res.Skipped++
			continue
		}
		recs, err := DecodeCompletion(content)
		if err != nil {
			zap.S().Errorf("error decoding cleaned response (custom_id=%v): %v", env["custom_id"], err)
			return nil, errors.Wrapf(err, "custom_id %v", env["custom_id"])
		}
		res.Records = append(res.Records, recs...)
	}

	for _, rec := range res.Records {
		if err := model.CoerceDesignID(rec); err != nil {
			return nil, err
		}
	}
	zap.S().Infof("cleaned %d responses", len(res.Records))
	return res, nil
}

// Completion extracts the completion text from one envelope.
func Completion(env map[string]any) (string, error) {
	var cur any = env
	for _, key := range completionPath {
		switch k := key.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return "", &MissingKeyError{Key: k}
			}
			if cur, ok = m[k]; !ok {
				return "", &MissingKeyError{Key: k}
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || k >= len(arr) {
				return "", &MissingKeyError{Key: k}
			}
			cur = arr[k]
		}
	}
	s, ok := cur.(string)
	if !ok {
		return "", &MissingKeyError{Key: "content"}
	}
	return s, nil
}

// DecodeCompletion normalizes one completion and returns its records.
// Array elements that are not objects are dropped.
func DecodeCompletion(content string) ([]model.Record, error) {
	cleaned, err := repair.Normalize(content)
	if err != nil {
		return nil, err
	}
	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, errors.Wrap(err, "decode cleaned response")
	}
	recs := make([]model.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			zap.S().Warnf("dropping non-object element %d (%T)", i, item)
			continue
		}
		recs = append(recs, model.Record(obj))
	}
	return recs, nil
}
