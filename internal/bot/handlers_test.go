package bot

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeArchive struct {
	calls []string
	err   error
}

func (f *fakeArchive) record(call string) (string, error) {
	f.calls = append(f.calls, call)
	return "ok " + call, f.err
}

func (f *fakeArchive) GetRanking(season string) (string, error) {
	return f.record("ranking(" + season + ")")
}

func (f *fakeArchive) GetMatchday(season, journee string) (string, error) {
	return f.record("matchday(" + season + "," + journee + ")")
}

func (f *fakeArchive) GetHistory(season string) (string, error) {
	return f.record("history(" + season + ")")
}

func (f *fakeArchive) GetPalmares() (string, error) { return f.record("palmares()") }

func (f *fakeArchive) GetLeaders() (string, error) { return f.record("leaders()") }

func (f *fakeArchive) GetPlayer(query string) (string, error) {
	return f.record("player(" + query + ")")
}

func (f *fakeArchive) GetSeasons(competition string) (string, error) {
	return f.record("seasons(" + competition + ")")
}

func command(text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		text string
		call string
	}{
		{"/classement", "ranking()"},
		{"/classement ligue1-2019-2020", "ranking(ligue1-2019-2020)"},
		{"/journee", "matchday(,)"},
		{"/journee 12", "matchday(,12)"},
		{"/journee j7", "matchday(,j7)"},
		{"/journee top14", "matchday(top14,)"},
		{"/journee ldc-2020-2021 3", "matchday(ldc-2020-2021,3)"},
		{"/historique top14", "history(top14)"},
		{"/palmares", "palmares()"},
		{"/leaders", "leaders()"},
		{"/joueur le gone", "player(le gone)"},
		{"/saisons international", "seasons(international)"},
		{"/CLASSEMENT", "ranking()"},
	}
	for _, tt := range tests {
		archive := &fakeArchive{}
		msg := NewHandler(archive).HandleCommand(command(tt.text))
		if len(archive.calls) != 1 || archive.calls[0] != tt.call {
			t.Errorf("%q called %v, want [%s]", tt.text, archive.calls, tt.call)
			continue
		}
		if msg.Text != "ok "+tt.call || msg.ChatID != 42 || msg.ParseMode != "Markdown" {
			t.Errorf("%q reply = %+v", tt.text, msg)
		}
	}
}

func TestHandleCommandWithoutArchive(t *testing.T) {
	tests := map[string]string{
		"/start":   "Welcome",
		"/help":    "/classement [saison]",
		"/joueur":  "Usage: /joueur <nom>",
		"/unknown": "Unknown command",
	}
	for text, want := range tests {
		archive := &fakeArchive{}
		msg := NewHandler(archive).HandleCommand(command(text))
		if !strings.Contains(msg.Text, want) {
			t.Errorf("%q reply = %q, want it to contain %q", text, msg.Text, want)
		}
		if len(archive.calls) != 0 {
			t.Errorf("%q queried the archive: %v", text, archive.calls)
		}
	}
}

func TestHandleCommandError(t *testing.T) {
	archive := &fakeArchive{err: errors.New("archive document not found")}
	msg := NewHandler(archive).HandleCommand(command("/palmares"))
	if msg.Text != "Error fetching palmares: archive document not found" {
		t.Errorf("reply = %q", msg.Text)
	}
}
