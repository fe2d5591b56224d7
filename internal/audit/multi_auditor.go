package audit

import (
	"errors"

	"github.com/darmiel/realmbroker/internal/core"
)

var (
	_ core.Auditor     = (*MultiAuditor)(nil)
	_ core.AuditReader = (*MultiAuditor)(nil)
)

// MultiAuditor fans entries out to several auditors.
// Reads are served by the first auditor that keeps entries.
type MultiAuditor struct {
	auditors []core.Auditor
}

func NewMultiAuditor(auditors ...core.Auditor) *MultiAuditor {
	return &MultiAuditor{auditors: auditors}
}

func (m *MultiAuditor) Log(entry core.AuditEntry) error {
	var errs []error
	for _, a := range m.auditors {
		if err := a.Log(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiAuditor) Close() error {
	var errs []error
	for _, a := range m.auditors {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiAuditor) reader() core.AuditReader {
	for _, a := range m.auditors {
		if r, ok := a.(core.AuditReader); ok {
			return r
		}
	}
	return nil
}

func (m *MultiAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	r := m.reader()
	if r == nil {
		return nil, ErrNotReadable
	}
	return r.GetRecent(limit)
}

func (m *MultiAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	r := m.reader()
	if r == nil {
		return nil, ErrNotReadable
	}
	return r.Find(filter, limit)
}
