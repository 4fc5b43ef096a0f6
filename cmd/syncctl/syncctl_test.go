package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("SYNCABLE_STORE", "")
	c := &cli{t: t, dbPath: filepath.Join(t.TempDir(), "syncctl.db")}
	c.ok("migrate")
	return c
}

func (c *cli) exec(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--store", "sqlite", "--sqlite-path", c.dbPath, "--log-level", "error"}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.exec(args...)
	require.NoError(c.t, err, errOut)
	return out
}

func TestCreateShow(t *testing.T) {
	c := newCLI(t)

	out := c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "19.99")
	assert.Equal(t, "lamp-1\n", out)

	out = c.ok("show", "lamp-1")
	assert.Contains(t, out, "name:        Lamp")
	assert.Contains(t, out, "base_price:  19.99")
	assert.Contains(t, out, "status:      inactive")
}

func TestCreate_GeneratesID(t *testing.T) {
	c := newCLI(t)

	id := strings.TrimSpace(c.ok("create", "--name", "Lamp", "--category", "home", "--price", "5"))
	assert.Len(t, id, 36)
	assert.Contains(t, c.ok("show", id), "Lamp")
}

func TestCreate_Invalid(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.exec("create", "--name", "Lamp", "--category", "home", "--price", "-3")
	assert.Error(t, err)

	_, _, err = c.exec("create", "--name", "Lamp", "--category", "home", "--price", "cheap")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	c := newCLI(t)
	c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "19.99")

	out := c.ok("set", "lamp-1", "name=Desk Lamp", "base_price=24.50", "status=active")
	assert.Contains(t, out, "changed: base_price, name, status")
	assert.Contains(t, out, "synced")

	out = c.ok("show", "lamp-1")
	assert.Contains(t, out, "Desk Lamp")
	assert.Contains(t, out, "24.50")
	assert.Contains(t, out, "active")
}

func TestSet_DryRunAndRevert(t *testing.T) {
	c := newCLI(t)
	c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "10")

	out := c.ok("set", "lamp-1", "name=Other", "--dry-run")
	assert.Contains(t, out, "dry run")
	assert.Contains(t, c.ok("show", "lamp-1"), "name:        Lamp")

	out = c.ok("set", "lamp-1", "name=Kept", "category=office", "--revert", "category")
	assert.Contains(t, out, "changed: name\n")
	shown := c.ok("show", "lamp-1")
	assert.Contains(t, shown, "Kept")
	assert.Contains(t, shown, "category:    home")

	out = c.ok("set", "lamp-1", "name=Kept")
	assert.Equal(t, "no changes\n", out)
}

func TestSet_Errors(t *testing.T) {
	c := newCLI(t)
	c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "10")

	_, _, err := c.exec("set", "lamp-1", "name")
	assert.ErrorContains(t, err, "expected field=value")

	_, _, err = c.exec("set", "lamp-1", "colour=red")
	assert.ErrorContains(t, err, "colour")

	_, _, err = c.exec("set", "ghost", "name=x")
	assert.ErrorContains(t, err, "ghost")
}

func TestRemove(t *testing.T) {
	c := newCLI(t)
	c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "10")

	assert.Equal(t, "removed lamp-1\n", c.ok("remove", "lamp-1"))

	_, _, err := c.exec("show", "lamp-1")
	assert.Error(t, err)
}

func TestMetricsFlag(t *testing.T) {
	c := newCLI(t)
	c.ok("create", "--id", "lamp-1", "--name", "Lamp", "--category", "home", "--price", "10")

	_, errOut, err := c.exec("--metrics", "set", "lamp-1", "name=Bright")
	require.NoError(t, err)
	assert.Contains(t, errOut, `syncable_field_writes_total{field="name",table="products"} 1`)
	assert.Contains(t, errOut, `syncable_sync_total{result="synced",table="products"} 1`)
}

func TestUnknownStore(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--store", "tape", "show", "x"}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestOutbox_RequiresSpanner(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.exec("outbox", "list")
	assert.ErrorIs(t, err, errNoOutbox)

	_, _, err = c.exec("outbox", "purge", "--dry-run")
	assert.ErrorIs(t, err, errNoOutbox)
}
