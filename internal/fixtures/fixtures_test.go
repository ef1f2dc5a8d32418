package fixtures

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
audits:
  - id: aud-1
    timestamp: 2024-03-15T10:00:00Z
    actor_id: u-1
    actor_name: Lucía Ferrer
    actor_role: partner
    action: update
    module: expedientes
    severity: info
    description: Actualizó el expediente
    entity_type: expediente
    entity_name: Exp. 12/2024
expenses:
  - id: exp-1
    date: 2024-03-14T00:00:00Z
    lawyer_id: u-2
    lawyer_name: Marcos Gil
    lawyer_role: junior_associate
    category: viajes
    status: pendiente
    amount: 85.5
time_entries:
  - id: te-1
    date: 2024-03-14T00:00:00Z
    lawyer_id: u-2
    lawyer_name: Marcos Gil
    lawyer_role: junior_associate
    activity: Redacción de demanda
    hours: 2.5
    billable: true
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, set.Audits, 1)
	require.Len(t, set.Expenses, 1)
	require.Len(t, set.TimeEntries, 1)
	assert.Equal(t, 3, set.Len())

	a := set.Audits[0]
	assert.Equal(t, models.RolePartner, a.ActorRole)
	assert.Equal(t, models.ModuleCases, a.Module)
	assert.True(t, a.Timestamp.Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 85.5, set.Expenses[0].Amount)
	assert.True(t, set.TimeEntries[0].Billable)
}

func TestParse_Empty(t *testing.T) {
	set, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("audits:\n  - id: a\n    colour: red\n"))
	assert.Error(t, err)
}

func TestParse_RejectsInvalidEnum(t *testing.T) {
	bad := `
audits:
  - id: aud-1
    timestamp: 2024-03-15T10:00:00Z
    actor_id: u-1
    actor_name: X
    actor_role: partner
    action: teleport
    module: expedientes
    severity: info
    description: d
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidEnum))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
