package llm

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	filesPath        = "/v1/files"
	batchesPath      = "/v1/batches"
	batchPurpose     = "batch"
	CompletionWindow = "24h"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusExpired    = "expired"
	StatusCancelled  = "cancelled"
	StatusInProgress = "in_progress"
	StatusValidating = "validating"
	StatusFinalizing = "finalizing"
)

// RequestCounts tallies the requests of one batch job.
type RequestCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// BatchStatus is the remote state of a batch job.
type BatchStatus struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Endpoint      string        `json:"endpoint"`
	InputFileID   string        `json:"input_file_id"`
	OutputFileID  string        `json:"output_file_id"`
	ErrorFileID   string        `json:"error_file_id"`
	CreatedAt     int64         `json:"created_at"`
	CompletedAt   int64         `json:"completed_at"`
	RequestCounts RequestCounts `json:"request_counts"`
}

// Done reports whether the job reached a terminal state.
func (s BatchStatus) Done() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

type fileObject struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
	Bytes    int64  `json:"bytes"`
}

type createBatchRequest struct {
	InputFileID      string `json:"input_file_id"`
	Endpoint         string `json:"endpoint"`
	CompletionWindow string `json:"completion_window"`
}

// UploadBatchFile uploads a JSONL task file with purpose "batch" and returns its file id.
func (c *OpenAIClient) UploadBatchFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open task file %s", path)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("purpose", batchPurpose); err != nil {
		return "", errors.Wrap(err, "write purpose field")
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", errors.Wrap(err, "create file part")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", errors.Wrapf(err, "copy task file %s", path)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart body")
	}

	resp, err := c.send(ctx, http.MethodPost, filesPath, w.FormDataContentType(), body.Bytes())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var obj fileObject
	if err := decodeBody(resp.Body, &obj); err != nil {
		return "", errors.Wrap(err, "decode file object")
	}
	if obj.ID == "" {
		return "", errors.New("upload returned no file id")
	}
	zap.S().Infof("uploaded %s as %s (%d bytes)", path, obj.ID, obj.Bytes)
	return obj.ID, nil
}

// CreateBatch starts a batch job over an uploaded task file.
func (c *OpenAIClient) CreateBatch(ctx context.Context, inputFileID, endpoint string) (BatchStatus, error) {
	var status BatchStatus
	err := c.doJSON(ctx, http.MethodPost, batchesPath, createBatchRequest{
		InputFileID:      inputFileID,
		Endpoint:         endpoint,
		CompletionWindow: CompletionWindow,
	}, &status)
	if err != nil {
		return BatchStatus{}, errors.Wrap(err, "create batch")
	}
	if status.ID == "" {
		return BatchStatus{}, errors.New("create batch returned no job id")
	}
	return status, nil
}

func (c *OpenAIClient) RetrieveBatch(ctx context.Context, jobID string) (BatchStatus, error) {
	var status BatchStatus
	if err := c.doJSON(ctx, http.MethodGet, batchesPath+"/"+jobID, nil, &status); err != nil {
		return BatchStatus{}, errors.Wrapf(err, "retrieve batch %s", jobID)
	}
	return status, nil
}

// FileContent downloads a file. The caller closes the reader.
func (c *OpenAIClient) FileContent(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodGet, filesPath+"/"+fileID+"/content", "", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "file content %s", fileID)
	}
	return resp.Body, nil
}
