package bot

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/bot/mocks"
	"gitlab.com/yelinaung/billed/internal/store/storetest"
)

func TestHandleChartCore(t *testing.T) {
	t.Parallel()

	t.Run("sends the chart", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(t, Deps{Store: storetest.NewFake(storetest.Fixtures()...)})
		mock := mocks.NewMockBot()
		login(t, b, mock, storetest.FixtureEmail)

		b.handleChartCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/chart"))

		require.Equal(t, 1, mock.SentDocumentCount())
		doc := mock.LastSentDocument()
		require.Contains(t, doc.Caption, "Total : 1000.00 €")
		require.Contains(t, doc.Caption, "Notes : 4")
		require.Equal(t, []byte("\x89PNG"), doc.Data[:4])
	})

	t.Run("no bills", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(t, Deps{Store: storetest.NewFake()})
		mock := mocks.NewMockBot()
		login(t, b, mock, storetest.FixtureEmail)

		b.handleChartCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/chart"))

		require.Zero(t, mock.SentDocumentCount())
		require.Contains(t, mock.LastSentMessage().Text, "Aucune note")
	})

	t.Run("send failure", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(t, Deps{Store: storetest.NewFake(storetest.Fixtures()...)})
		mock := mocks.NewMockBot()
		login(t, b, mock, storetest.FixtureEmail)
		mock.FailOn(mocks.MethodSendDocument, errors.New("too big"))

		b.handleChartCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/chart"))

		require.Contains(t, mock.LastSentMessage().Text, "Impossible d'envoyer le graphique")
	})
}

func TestHandleExportCore(t *testing.T) {
	t.Parallel()

	t.Run("sends every bill newest first", func(t *testing.T) {
		t.Parallel()
		b := newTestBot(t, Deps{Store: storetest.NewFake(storetest.Fixtures()...)})
		mock := mocks.NewMockBot()
		login(t, b, mock, storetest.FixtureEmail)

		b.handleExportCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/export"))

		require.Equal(t, 1, mock.SentDocumentCount())
		records, err := csv.NewReader(bytes.NewReader(mock.LastSentDocument().Data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 5)
		require.Equal(t, "2004-04-04", records[1][1])
		require.Equal(t, "2001-01-01", records[4][1])
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		fake := storetest.NewFake()
		fake.ListError = errors.New("Erreur 500")
		b := newTestBot(t, Deps{Store: fake})
		mock := mocks.NewMockBot()
		login(t, b, mock, storetest.FixtureEmail)

		b.handleExportCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/export"))

		require.Zero(t, mock.SentDocumentCount())
		require.Equal(t, "❌ Erreur 500", mock.LastSentMessage().Text)
	})

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()
		fake := storetest.NewFake(storetest.Fixtures()...)
		b := newTestBot(t, Deps{Store: fake})
		mock := mocks.NewMockBot()

		b.handleExportCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/export"))

		require.Equal(t, loginRequiredText, mock.LastSentMessage().Text)
		require.Zero(t, fake.ListCount())
	})
}
