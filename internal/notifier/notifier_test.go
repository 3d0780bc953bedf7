package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/model"
	"TrendRadar/internal/ranking"
)

func sampleRanking() *ranking.Ranking {
	return &ranking.Ranking{
		Results: []model.RankedResult{
			{Market: "KRW-BTC", Close: 95000000, RSI: model.Some(55.2), Cross: model.CrossUp, Signal: model.SignalBuy, Score: 12.5},
			{Market: "KRW-XRP", Close: 0.5123, RSI: model.Some(75), Signal: model.SignalSell, Score: -3},
			{Market: "KRW-NEW", Close: 12.3, RSI: model.None(), Signal: model.SignalHold, Score: 0},
		},
		Skipped: []model.Skipped{{Market: "KRW-BAD", Reason: "malformed candle batch: empty batch"}},
	}
}

func TestFormatRanking(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	msg := FormatRanking("0123456789abcdef", at, sampleRanking(), 2)

	assert.Contains(t, msg, "2024-05-01 09:30")
	assert.Contains(t, msg, "run 01234567")
	assert.Contains(t, msg, "ranked 3, skipped 1")
	assert.Contains(t, msg, "<b>KRW-BTC</b> BUY score +12.50 | close 95000000 | RSI 55.20")
	assert.Contains(t, msg, "close 0.512300")
	assert.NotContains(t, msg, "KRW-NEW", "only the top 2 are listed")
	assert.Contains(t, msg, "KRW-BAD: malformed candle batch: empty batch")
}

func TestFormatBuySignals(t *testing.T) {
	msg := FormatBuySignals(sampleRanking())
	assert.Contains(t, msg, "<b>KRW-BTC</b>")
	assert.NotContains(t, msg, "KRW-XRP")

	empty := FormatBuySignals(&ranking.Ranking{})
	assert.Contains(t, empty, "None this scan.")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable("Top", sampleRanking().Results)
	assert.Contains(t, out, "KRW-BTC")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "+12.50")
	assert.Contains(t, out, "-3.00")

	assert.Contains(t, RenderTable("BUY", nil), "(none)")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)

	long := splitMessage(strings.Repeat("x", 25), 10)
	require.Len(t, long, 3)
	assert.Equal(t, strings.Repeat("x", 5), long[2])
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	require.True(t, n.Enabled())
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	err := n.SendWithRetry(context.Background(), "hello", 0)
	require.ErrorContains(t, err, "status 401")

	assert.False(t, NewTelegramNotifier("", "42", "").Enabled())
}

func TestTelegramNotifier_Polling(t *testing.T) {
	var sent []string
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			calls++
			if calls > 1 {
				cancel()
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":1,"message":{"text":" /buy ","chat":{"id":42}}},
				{"update_id":2,"message":{"text":"/scan","chat":{"id":7}}}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			sent = append(sent, body["text"])
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	var commands []string
	n.StartPolling(ctx, func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		return "reply to " + cmd
	})

	assert.Equal(t, []string{"/buy"}, commands)
	assert.Equal(t, []string{"reply to /buy"}, sent)
}
