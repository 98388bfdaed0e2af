package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrseal/qrseal/app/assess"
	"github.com/qrseal/qrseal/app/store"
)

func TestMakeStore(t *testing.T) {
	mem, err := makeStore(":memory:", time.Hour)
	require.NoError(t, err)
	defer mem.Close()

	file, err := makeStore(filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	defer file.Close()

	code := &store.Code{ID: "3f2a9c1e-0000-4000-8000-000000000000", ShortID: "3F2A9C", Owner: "dev", Name: "n",
		Kind: "text", Token: "a$b$c$d", Status: store.StatusActive, CreatedAt: time.Now()}
	require.NoError(t, file.Save(context.Background(), code))
	token, err := file.Resolve(context.Background(), "3F2A9C")
	require.NoError(t, err)
	assert.Equal(t, "a$b$c$d", token)
}

func TestMakeAssessor(t *testing.T) {
	defer func() { opts.Assess.URL, opts.Assess.Action = "", "" }()

	opts.Assess.Action = "refuse"
	st, ok := makeAssessor().(assess.Static)
	require.True(t, ok)
	assert.Equal(t, assess.ActionRefuse, st.Action)

	opts.Assess.URL = "http://127.0.0.1:1/assess"
	opts.Assess.Timeout = time.Second
	rm, ok := makeAssessor().(*assess.Remote)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:1/assess", rm.URL)
	assert.Equal(t, time.Second, rm.Client.Timeout)
}

func TestMakeAlerter(t *testing.T) {
	defer func() { opts.Alert.Webhook = "" }()

	al, err := makeAlerter()
	require.NoError(t, err)
	assert.Nil(t, al, "no channels, no alerter")

	opts.Alert.Webhook = "http://127.0.0.1:1/hook"
	al, err = makeAlerter()
	require.NoError(t, err)
	assert.NotNil(t, al)

	opts.Alert.Webhook = "ftp://example.com"
	_, err = makeAlerter()
	require.Error(t, err)
}

func TestGenKeys(t *testing.T) {
	require.NoError(t, genKeys())
}
