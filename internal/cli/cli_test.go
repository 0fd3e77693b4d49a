package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/export"
	"github.com/transferdesk/platform/internal/store"
)

func testStores() *store.Stores {
	s := store.New(nil, store.Repositories{})
	s.Players.Put(domain.Player{ID: "p1", Name: "Zico", Position: domain.PositionForward})
	s.Players.Put(domain.Player{ID: "p2", Name: "Ana", Position: domain.PositionGoalkeeper})
	s.Teams.Put(domain.Team{ID: "t1", Name: "Flamengo", League: "Serie A", Country: "Brazil"})
	s.Transfers.Put(domain.Transfer{
		ID: "x1", PlayerID: "p1", PlayerName: "Zico", FromTeam: "Flamengo", ToTeam: "Udinese",
		TransferDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	s.Users.Put(domain.User{ID: "u1", Name: "Root", Email: "root@club.com", Role: domain.RoleAdmin})
	return s
}

func TestExportEntity_WritesFile(t *testing.T) {
	dir := t.TempDir()
	stores := testStores()

	require.NoError(t, exportEntity(context.Background(), stores, "players", "", export.FileSink{Dir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, export.PlayersFile))
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(export.PlayerHeaders, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Ana"`))
	assert.True(t, strings.HasPrefix(lines[2], `"Zico"`))
}

func TestExportEntity_Filtered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, exportEntity(context.Background(), testStores(), "PLAYERS", "zi", export.FileSink{Dir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, export.PlayersFile))
	require.NoError(t, err)
	assert.Equal(t, 2, len(strings.Split(string(data), "\n")))
}

func TestExportEntity_AllEntities(t *testing.T) {
	files := map[string]string{
		"players":   export.PlayersFile,
		"teams":     export.TeamsFile,
		"transfers": export.TransfersFile,
		"users":     export.UsersFile,
	}
	for entity, file := range files {
		t.Run(entity, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, exportEntity(context.Background(), testStores(), entity, "", export.FileSink{Dir: dir}))
			_, err := os.Stat(filepath.Join(dir, file))
			assert.NoError(t, err)
		})
	}
}

func TestExportEntity_Unknown(t *testing.T) {
	err := exportEntity(context.Background(), testStores(), "coaches", "", export.FileSink{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestExportCmd_RejectsUnknownEntity(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"export", "coaches"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"migrate", "create-admin", "export", "stats", "archive", "events"} {
		assert.Contains(t, names, want)
	}
}

func TestWriteStats_Text(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, computeStats(testStores(), now), false))

	out := buf.String()
	assert.Contains(t, out, "players:          2")
	assert.Contains(t, out, "recent transfers: 1")
	assert.Contains(t, out, "- Zico: Flamengo -> Udinese (Free transfer)")
}

func TestWriteStats_JSON(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, writeStats(&buf, computeStats(testStores(), now), true))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 2, got["totalPlayers"])
	assert.EqualValues(t, 1, got["totalTeams"])
}

type scriptedReader struct {
	msgs []message
	err  error
}

func (r *scriptedReader) ReadMessage(context.Context) (message, error) {
	if len(r.msgs) == 0 {
		return message{}, r.err
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func TestPrintMessages(t *testing.T) {
	r := &scriptedReader{
		msgs: []message{{Topic: "td.player.created", Key: []byte("p1"), Value: []byte(`{"a":1}`)}},
		err:  context.Canceled,
	}
	var buf bytes.Buffer
	require.NoError(t, printMessages(context.Background(), r, &buf))
	assert.Equal(t, "td.player.created key=p1 {\"a\":1}\n", buf.String())
}

func TestPrintMessages_BrokerError(t *testing.T) {
	r := &scriptedReader{err: errors.New("broker gone")}
	err := printMessages(context.Background(), r, &bytes.Buffer{})
	assert.EqualError(t, err, "broker gone")
}

func TestDescribe(t *testing.T) {
	err := describe(domain.ErrFieldValidation(map[string]string{
		"password": "Password must be at least 6 characters",
		"email":    "Please enter a valid email address",
	}))
	assert.Equal(t, "validation failed (email: Please enter a valid email address; password: Password must be at least 6 characters)", err.Error())

	plain := errors.New("boom")
	assert.Equal(t, plain, describe(plain))
}
