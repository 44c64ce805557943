package schemacheck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_ProfilesToken(t *testing.T) {
	msg := "no such table: burburiuok.profiles"

	table, ok := Match(msg, TableProfiles)
	assert.True(t, ok)
	assert.Equal(t, TableProfiles, table)

	// The same message must not match the other tracked table.
	_, ok = Match(msg, TableAdminInvites)
	assert.False(t, ok)
}

func TestMatch_AdminInvitesToken(t *testing.T) {
	msg := `ERROR: relation "burburiuok.admin_invites" does not exist (SQLSTATE 42P01)`

	table, ok := Match(msg, TableAdminInvites)
	assert.True(t, ok)
	assert.Equal(t, TableAdminInvites, table)

	_, ok = Match(msg, TableProfiles)
	assert.False(t, ok)
}

func TestMatch_EmptyMessage(t *testing.T) {
	_, ok := Match("", TableProfiles, TableAdminInvites)
	assert.False(t, ok)
}

func TestMatch_UnqualifiedNameDoesNotMatch(t *testing.T) {
	// A bare table name without the schema qualifier is some other table.
	_, ok := Match("no such table: profiles", TableProfiles)
	assert.False(t, ok)
}

func TestMissingTable_NilError(t *testing.T) {
	assert.False(t, MissingTable(nil, TableProfiles))
	assert.False(t, MissingTable(nil, TableAdminInvites))
}

func TestMissingTable_WrappedError(t *testing.T) {
	// Classification must survive fmt.Errorf %w wrapping.
	err := fmt.Errorf("failed to load profile: %w",
		errors.New("no such table: burburiuok.profiles"))
	assert.True(t, MissingTable(err, TableProfiles))
	assert.False(t, MissingTable(err, TableAdminInvites))
}

func TestAnyMissingTable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTable Table
		wantOK    bool
	}{
		{
			name:      "profiles missing",
			err:       errors.New("no such table: burburiuok.profiles"),
			wantTable: TableProfiles,
			wantOK:    true,
		},
		{
			name:      "admin invites missing",
			err:       errors.New(`relation "burburiuok.admin_invites" does not exist`),
			wantTable: TableAdminInvites,
			wantOK:    true,
		},
		{
			name:   "unrelated error",
			err:    errors.New("connection refused"),
			wantOK: false,
		},
		{
			name:   "nil error",
			err:    nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, ok := AnyMissingTable(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantTable, table)
			}
		})
	}
}

func TestQualified(t *testing.T) {
	assert.Equal(t, "burburiuok.profiles", TableProfiles.Qualified())
	assert.Equal(t, "burburiuok.admin_invites", TableAdminInvites.Qualified())
}
