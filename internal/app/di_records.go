package app

import (
	"fmt"

	recordsHTTP "github.com/allisson/fieldvault/internal/records/http"
	recordsService "github.com/allisson/fieldvault/internal/records/service"
)

// RecordCipher returns the sensitive-field walker.
func (c *Container) RecordCipher() (recordsService.RecordCipher, error) {
	var err error
	c.recordCipherInit.Do(func() {
		c.recordCipher, err = c.initRecordCipher()
		if err != nil {
			c.initErrors["recordCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordCipher"]; exists {
		return nil, storedErr
	}
	return c.recordCipher, nil
}

// RecordHandler returns the records HTTP handler.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	recordCipher, err := c.RecordCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get record cipher for record handler: %w", err)
	}

	auditWriter, err := c.AuditWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit writer for record handler: %w", err)
	}

	return recordsHTTP.NewRecordHandler(recordCipher, auditWriter, c.Logger()), nil
}

// initRecordCipher creates the sensitive-field walker with all its dependencies.
func (c *Container) initRecordCipher() (recordsService.RecordCipher, error) {
	auditWriter, err := c.AuditWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit writer for record cipher: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for record cipher: %w", err)
	}

	return recordsService.NewWalker(
		c.EnvelopeCodec(),
		auditWriter,
		c.Logger(),
		businessMetrics,
	), nil
}
