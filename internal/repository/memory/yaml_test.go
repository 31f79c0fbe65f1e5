package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetYAML = `
zones:
  - {id: z1, code: BKK, name: Bangkok}
branches:
  - {id: b1, code: HQ, name: Head Office, zone_id: z1}
departments:
  - {id: d1, code: OPS, name: Operations, branch_id: b1}
employees:
  - {employee_code: "1001", full_name: Somchai, branch_id: b1, department_id: d1}
  - {id: e2, employee_code: "1002", full_name: Suda, branch_id: b1, active: false}
shifts:
  - name: Office
    days:
      - day: mon
        start_time: "08:00"
        end_time: "17:00"
        break_rules:
          - {type: fixed, start_time: "12:00", end_time: "13:00"}
    scope_assignments:
      - {level: branch, branch_id: b1}
`

func TestLoadYAML(t *testing.T) {
	ctx := context.Background()

	repos, err := LoadYAML(ctx, strings.NewReader(datasetYAML))
	require.NoError(t, err)

	first, err := repos.Employee.GetByID(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, first.ZoneID)
	assert.Equal(t, "z1", *first.ZoneID)
	assert.True(t, first.IsActive)

	second, err := repos.Employee.GetByID(ctx, "e2")
	require.NoError(t, err)
	assert.False(t, second.IsActive)
	assert.Nil(t, second.DepartmentID)

	active, err := repos.Employee.List(ctx, employee.ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	shifts, err := repos.Shift.List(ctx, shift.ListFilter{})
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	office := shifts[0]
	assert.True(t, office.IsActive)
	assert.Equal(t, shift.Monday, office.Days[0].Day)
	assert.Equal(t, shift.BreakFixed, office.Days[0].BreakRules[0].Type)
	assert.Equal(t, shift.ScopeBranch, office.ScopeAssignments[0].Level)

	zones, err := repos.Organization.GetZonesByIDs(ctx, []string{"z1"})
	require.NoError(t, err)
	assert.Len(t, zones, 1)
}

func TestLoadYAML_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadYAML(ctx, strings.NewReader("employees:\n  - {full_name: Nobody}\n"))
	assert.ErrorContains(t, err, "employee_code is required")

	_, err = LoadYAML(ctx, strings.NewReader("unknown_section: []\n"))
	assert.ErrorContains(t, err, "failed to decode dataset")

	repos, err := LoadYAML(ctx, strings.NewReader(""))
	require.NoError(t, err)
	all, err := repos.Employee.List(ctx, employee.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
