package queue

import (
    "bufio"
    "encoding/json"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
    at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.FixedZone("X", 3600))
    env, err := NewEnvelope(BookingCreated, at, BookingEvent{BookingID: 7, WorkstationID: 3, Date: "2026-03-02", TimeSlot: "Midday"})
    require.NoError(t, err)

    assert.Len(t, env.ID, 36)
    assert.Equal(t, BookingCreated, env.Type)
    assert.Equal(t, time.UTC, env.OccurredAt.Location())

    var got BookingEvent
    require.NoError(t, json.Unmarshal(env.Payload, &got))
    assert.EqualValues(t, 7, got.BookingID)

    other, err := NewEnvelope(BookingCreated, at, nil)
    require.NoError(t, err)
    assert.NotEqual(t, env.ID, other.ID)
}

func TestAuditConsumerAppendsLines(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    c := &AuditConsumer{Dir: dir, Log: zerolog.Nop()}

    for _, typ := range []string{RowDeleted, QueueAdded} {
        env, err := NewEnvelope(typ, time.Now(), map[string]int{"id": 1})
        require.NoError(t, err)
        body, err := json.Marshal(env)
        require.NoError(t, err)
        require.NoError(t, c.HandleMessage(body))
    }

    f, err := os.Open(filepath.Join(dir, AuditLogFile))
    require.NoError(t, err)
    defer f.Close()

    var types []string
    sc := bufio.NewScanner(f)
    for sc.Scan() {
        var line map[string]any
        require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
        types = append(types, line["type"].(string))
        assert.Equal(t, map[string]any{"id": float64(1)}, line["payload"])
        assert.Equal(t, "info", line["level"])
        assert.NotEmpty(t, line["event_id"])
    }
    assert.Equal(t, []string{RowDeleted, QueueAdded}, types)
}

func TestAuditConsumerRejectsGarbage(t *testing.T) {
    c := &AuditConsumer{Dir: t.TempDir(), Log: zerolog.Nop()}
    assert.Error(t, c.HandleMessage([]byte("not json")))
    assert.Error(t, c.HandleMessage([]byte(`{"id":"x"}`)))
}
