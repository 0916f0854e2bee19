package automod

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifierOnTimeout(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	bodies := make(chan SlackWebhookBody, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body SlackWebhookBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bodies <- body
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	eng, _, _ := EngineTestFixture(constRule("links", Timeout("no links")))
	eng.Notifier = &SlackNotifier{SlackWebhookURL: srv.URL, Client: srv.Client()}

	v, err := eng.Check(context.Background(), testMessage("7", "buy stuff"))
	require.NoError(err)
	assert.Equal(ActionTimeout, v.Action)

	body := <-bodies
	assert.Contains(body.Text, "`user7` / `7`")
	assert.Contains(body.Text, "Rule: `links`, duration: 2m0s")
	assert.Contains(body.Text, "Reason: no links")
	assert.Contains(body.Text, "> buy stuff")
}

func TestSlackNotifierFailureDoesNotFailCheck(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := &SlackNotifier{SlackWebhookURL: srv.URL, Client: srv.Client()}
	assert.Error(n.SendTimeout(context.Background(), testMessage("1", "x"), Verdict{Action: ActionTimeout}))

	eng, exec, _ := EngineTestFixture(constRule("links", Timeout("no links")))
	eng.Notifier = n
	v, err := eng.Check(context.Background(), testMessage("1", "x"))
	assert.NoError(err)
	assert.Equal(ActionTimeout, v.Action)
	assert.Len(exec.Timeouts, 1)
}
