package app

import (
	"fmt"

	auditHTTP "github.com/allisson/fieldvault/internal/audit/http"
	auditRepository "github.com/allisson/fieldvault/internal/audit/repository"
	auditUsecase "github.com/allisson/fieldvault/internal/audit/usecase"
)

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// AuditWriter returns the background audit writer. The writer's worker is
// started on first access and runs until Container.Shutdown closes it.
func (c *Container) AuditWriter() (*auditUsecase.AuditWriter, error) {
	var err error
	c.auditWriterInit.Do(func() {
		c.auditWriter, err = c.initAuditWriter()
		if err != nil {
			c.initErrors["auditWriter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditWriter"]; exists {
		return nil, storedErr
	}
	return c.auditWriter, nil
}

// AuditLogHandler returns the audit log HTTP handler.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	auditWriter, err := c.AuditWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit writer for audit log handler: %w", err)
	}
	return auditHTTP.NewAuditLogHandler(auditWriter, c.Logger()), nil
}

// initAuditLogRepository creates the audit log repository instance.
func (c *Container) initAuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditWriter creates and starts the background audit writer.
func (c *Container) initAuditWriter() (*auditUsecase.AuditWriter, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit writer: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit writer: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit writer: %w", err)
	}

	writer := auditUsecase.NewAuditWriter(
		auditLogRepo,
		txManager,
		c.Logger(),
		businessMetrics,
		c.config.AuditQueueSize,
	)
	writer.Start()

	return writer, nil
}
