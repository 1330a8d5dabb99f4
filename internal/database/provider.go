package database

import (
	"context"
	"fmt"
	"sync"
)

var (
	reportReader     func() ReportReader
	reportReaderName string
	providerMu       sync.RWMutex
)

// RegisterReportReader registers the active report backend.
// Backends call this from their Initialize function to avoid import cycles.
func RegisterReportReader(name string, reader func() ReportReader) {
	providerMu.Lock()
	defer providerMu.Unlock()
	reportReader = reader
	reportReaderName = name
}

// IsInitialized returns whether a report backend has been registered.
func IsInitialized() bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return reportReader != nil
}

// BackendName returns the name of the registered backend, or "".
func BackendName() string {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return reportReaderName
}

// GetReportReader returns a ReportReader from the registered backend
func GetReportReader(ctx context.Context) (ReportReader, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if reportReader == nil {
		return nil, fmt.Errorf("report backend not initialized: DATABASE_URL or MYSQL_DSN is required")
	}
	return reportReader(), nil
}
