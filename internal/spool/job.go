// Package spool picks up forward decoding jobs dropped into a directory.
package spool

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	jobSuffix    = ".toml"
	doneSuffix   = ".done"
	failedSuffix = ".failed"
)

var ErrNoPayload = errors.New("job has neither payload, payload_file nor apply_down")

// Job is one envelope to decode, described by a toml file:
//
//	session_key = "30313233..."   # hex
//	root = "MultiMsg"             # optional
//	resid = "..."                 # optional
//	payload = "KAAAAA..."         # base64, or
//	payload_file = "blob.bin"     # relative to the job file
//
// Instead of a payload and key a job may carry the base64 apply-down
// response (apply_down), the envelope is then downloaded.
type Job struct {
	SessionKey  string `toml:"session_key"`
	Root        string `toml:"root"`
	ResID       string `toml:"resid"`
	Payload     string `toml:"payload"`
	PayloadFile string `toml:"payload_file"`
	ApplyDown   string `toml:"apply_down"`

	Path string `toml:"-"`
}

func ParseJob(path string, data []byte) (*Job, error) {
	job := &Job{}
	if err := toml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("decoding job %v: %w", path, err)
	}
	job.Path = path
	if job.ApplyDown != "" {
		return job, nil
	}
	if job.Payload == "" && job.PayloadFile == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoPayload, path)
	}
	if job.SessionKey == "" {
		return nil, fmt.Errorf("job %v has no session_key", path)
	}
	return job, nil
}

func ReadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJob(path, data)
}

func (j *Job) Key() ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(j.SessionKey))
	if err != nil {
		return nil, fmt.Errorf("session_key of %v: %w", j.Path, err)
	}
	return key, nil
}

// Downloads reports whether the envelope has to be fetched first.
func (j *Job) Downloads() bool {
	return j.ApplyDown != ""
}

func (j *Job) LoadApplyDown() ([]byte, error) {
	rsp, err := base64.StdEncoding.DecodeString(strings.TrimSpace(j.ApplyDown))
	if err != nil {
		return nil, fmt.Errorf("apply_down of %v: %w", j.Path, err)
	}
	return rsp, nil
}

// LoadPayload returns the raw envelope of the job.
func (j *Job) LoadPayload() ([]byte, error) {
	if j.Payload != "" {
		payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(j.Payload))
		if err != nil {
			return nil, fmt.Errorf("payload of %v: %w", j.Path, err)
		}
		return payload, nil
	}
	path := j.PayloadFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(j.Path), path)
	}
	return os.ReadFile(path)
}

// Complete renames the job file so it is not picked up again.
func (j *Job) Complete(failed bool) error {
	suffix := doneSuffix
	if failed {
		suffix = failedSuffix
	}
	return os.Rename(j.Path, strings.TrimSuffix(j.Path, jobSuffix)+suffix)
}

func isJobFile(path string) bool {
	return strings.HasSuffix(path, jobSuffix) && !strings.HasPrefix(filepath.Base(path), ".")
}
