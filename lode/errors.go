package lode

import (
	"errors"
	"fmt"
	"strings"
)

// Report storage failure classes. Match with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrDiskFull         = errors.New("no space left on device")
	ErrTimeout          = errors.New("operation timed out")
	ErrThrottled        = errors.New("rate limited")
	// ErrAuth is missing or invalid credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied is valid credentials without permission.
	ErrAccessDenied = errors.New("access denied")
	ErrNetwork      = errors.New("network error")
	// ErrUnclassified matches no known pattern.
	ErrUnclassified = errors.New("storage error")
)

// StorageError is a classified report storage failure.
type StorageError struct {
	Kind error
	// Op is init, write or read.
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the classification sentinel.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// WrapWriteError classifies a write failure. Returns nil if err is nil.
func WrapWriteError(err error, path string) error {
	return wrap(err, "write", path)
}

// WrapReadError classifies a read failure. Returns nil if err is nil.
func WrapReadError(err error, path string) error {
	return wrap(err, "read", path)
}

// WrapInitError classifies a client setup failure. Returns nil if err is nil.
func WrapInitError(err error, dataset string) error {
	return wrap(err, "init", dataset)
}

func wrap(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: classify(err), Op: op, Path: path, Err: err}
}

// classifyRule maps message fragments to a class. First match wins, so the
// access-denied rule precedes the generic permission rule.
type classifyRule struct {
	kind     error
	patterns []string
}

var classifyRules = []classifyRule{
	{ErrAccessDenied, []string{"AccessDenied", "Forbidden", "403"}},
	{ErrPermissionDenied, []string{"permission denied", "EACCES"}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "ENOENT", "404", "NoSuchKey"}},
	{ErrDiskFull, []string{"no space left", "disk full", "ENOSPC", "quota exceeded"}},
	{ErrTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrThrottled, []string{"SlowDown", "rate exceeded", "throttl", "429", "TooManyRequests"}},
	{ErrAuth, []string{
		"NoCredentialProviders", "credentials", "InvalidAccessKeyId",
		"SignatureDoesNotMatch", "ExpiredToken", "401", "Unauthorized",
	}},
	{ErrNetwork, []string{"connection refused", "no route to host", "network unreachable", "DNS", "dial tcp"}},
}

func classify(err error) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, strings.ToLower(p)) {
				return rule.kind
			}
		}
	}
	return ErrUnclassified
}
