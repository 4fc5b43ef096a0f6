package spannerstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/syncable/internal/models/m_outbox"
	"github.com/light-bringer/syncable/internal/models/m_product"
)

// Schema returns the DDL for the product and outbox tables.
func Schema() []string {
	return append([]string{m_product.SpannerDDL}, m_outbox.SpannerDDL...)
}

// Migrate creates the database when missing and applies ddl. Statements must
// be idempotent (IF NOT EXISTS). Against the emulator the instance is created
// too.
func (s *Store) Migrate(ctx context.Context, ddl ...string) error {
	if len(ddl) == 0 {
		return nil
	}
	parent, _, ok := splitDatabasePath(s.cfg.Database)
	if !ok {
		return fmt.Errorf("malformed database path %q", s.cfg.Database)
	}
	if s.cfg.EmulatorHost != "" {
		if err := s.ensureEmulatorInstance(ctx, parent); err != nil {
			return err
		}
	}

	adminClient, err := database.NewDatabaseAdminClient(ctx, s.cfg.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	if err := ensureDatabase(ctx, adminClient, s.cfg.Database); err != nil {
		return err
	}

	op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   s.cfg.Database,
		Statements: ddl,
	})
	if err != nil {
		return fmt.Errorf("failed to start DDL update: %w", err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to apply DDL: %w", err)
	}
	slog.Info("spanner schema applied", "database", s.cfg.Database, "statements", len(ddl))
	return nil
}

func (s *Store) ensureEmulatorInstance(ctx context.Context, instancePath string) error {
	instanceAdmin, err := instance.NewInstanceAdminClient(ctx, s.cfg.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: instancePath})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check instance: %w", err)
	}

	project, instanceID, ok := strings.Cut(strings.TrimPrefix(instancePath, "projects/"), "/instances/")
	if !ok {
		return fmt.Errorf("malformed instance path %q", instancePath)
	}
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + project,
		InstanceId: instanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", project),
			DisplayName: "Development Instance",
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("failed to wait for instance creation: %w", err)
	}
	slog.Info("spanner emulator instance created", "instance", instancePath)
	return nil
}

func ensureDatabase(ctx context.Context, adminClient *database.DatabaseAdminClient, dbPath string) error {
	_, err := adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: dbPath})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check database: %w", err)
	}

	parent, id, ok := splitDatabasePath(dbPath)
	if !ok {
		return fmt.Errorf("malformed database path %q", dbPath)
	}
	op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          parent,
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", id),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	slog.Info("spanner database created", "database", dbPath)
	return nil
}

// splitDatabasePath splits projects/P/instances/I/databases/D into the
// instance path and D.
func splitDatabasePath(dbPath string) (parent, id string, ok bool) {
	i := strings.LastIndex(dbPath, "/databases/")
	if i <= 0 {
		return "", "", false
	}
	id = dbPath[i+len("/databases/"):]
	if id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return dbPath[:i], id, true
}
