package audit

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
)

// ErrNotReadable is returned when the configured auditor does not keep entries.
var ErrNotReadable = errors.New("auditor does not keep entries")

// Build creates the auditor described by cfg.
// Events always reach the logger; a disabled audit config only logs.
func Build(cfg config.AuditConfig, logger zerolog.Logger) (core.Auditor, error) {
	logAuditor := NewLogAuditor(logger)
	if !cfg.Enabled {
		return logAuditor, nil
	}
	switch cfg.Type {
	case "log":
		return logAuditor, nil
	case "memory":
		return NewMultiAuditor(NewInMemoryAuditor(cfg.MaxEntries), logAuditor), nil
	case "file":
		fileAuditor, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("building file auditor: %w", err)
		}
		return NewMultiAuditor(fileAuditor, logAuditor), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}
