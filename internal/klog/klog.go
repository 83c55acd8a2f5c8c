// Package klog constructs the process-wide structured logger and hands out
// per-component children, replacing the teacher's bare fmt.Printf calls.
package klog

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the root logger. debug selects development mode (human-readable,
// debug level); production mode is JSON at info level.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("klog: building development logger: %w", err)
		}
		return l, nil
	}
	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("klog: building production logger: %w", err)
	}
	return l, nil
}

// Component returns a named child logger, e.g. Component(root, "store").
func Component(root *zap.Logger, name string) *zap.SugaredLogger {
	return root.Named(name).Sugar()
}
