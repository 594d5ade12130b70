package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentOnTweet(t *testing.T) {
	srv, app := newTestServer(t)
	author := signupAndLogin(t, app, "author")
	commenter := signupAndLogin(t, app, "commenter")

	body, ct := multipartTweet(t, "please respond", "", nil, nil)
	resp := doMultipart(t, app, "/tweet/new/", author, body, ct)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	tweets, err := srv.tweets.List(context.Background(), "")
	require.NoError(t, err)
	tweet := tweets[0]

	resp = doForm(t, app, http.MethodPost, detailPath(tweet.ID), commenter, url.Values{
		"comment": {"great tweet"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detailPath(tweet.ID), redirectTarget(resp))

	resp = doGet(t, app, detailPath(tweet.ID), "")
	page := readBody(t, resp)
	assert.Contains(t, page, "great tweet")
	assert.Contains(t, page, "commenter")

	comments, err := srv.comments.ListByTweet(context.Background(), tweet.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, tweet.ID, comments[0].TweetID)
	assert.Equal(t, "commenter", comments[0].User.Username)
}

func TestCommentStandaloneEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	cookie := signupAndLogin(t, app, "soloist")

	body, ct := multipartTweet(t, "standalone target", "", nil, nil)
	resp := doMultipart(t, app, "/tweet/new/", cookie, body, ct)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	tweets, err := srv.tweets.List(context.Background(), "")
	require.NoError(t, err)
	tweet := tweets[0]

	resp = doForm(t, app, http.MethodPost, detailPath(tweet.ID)+"comment/", cookie, url.Values{
		"comment": {"via the other route"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detailPath(tweet.ID), redirectTarget(resp))

	comments, err := srv.comments.ListByTweet(context.Background(), tweet.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestEmptyCommentRerendersWithoutRow(t *testing.T) {
	srv, app := newTestServer(t)
	cookie := signupAndLogin(t, app, "mute")

	body, ct := multipartTweet(t, "say something", "", nil, nil)
	resp := doMultipart(t, app, "/tweet/new/", cookie, body, ct)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	tweets, err := srv.tweets.List(context.Background(), "")
	require.NoError(t, err)
	tweet := tweets[0]

	resp = doForm(t, app, http.MethodPost, detailPath(tweet.ID), cookie, url.Values{
		"comment": {"   "},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := readBody(t, resp)
	assert.Contains(t, page, "Comment is required")
	assert.Contains(t, page, "say something")

	comments, err := srv.comments.ListByTweet(context.Background(), tweet.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentRequiresLogin(t *testing.T) {
	srv, app := newTestServer(t)
	cookie := signupAndLogin(t, app, "lonely")

	body, ct := multipartTweet(t, "members only", "", nil, nil)
	resp := doMultipart(t, app, "/tweet/new/", cookie, body, ct)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	tweets, err := srv.tweets.List(context.Background(), "")
	require.NoError(t, err)

	resp = doForm(t, app, http.MethodPost, detailPath(tweets[0].ID), "", url.Values{
		"comment": {"anonymous shout"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/", redirectTarget(resp))

	comments, err := srv.comments.ListByTweet(context.Background(), tweets[0].ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentOnMissingTweet(t *testing.T) {
	_, app := newTestServer(t)
	cookie := signupAndLogin(t, app, "ghostwriter")

	resp := doForm(t, app, http.MethodPost, "/tweet/424242/comment/", cookie, url.Values{
		"comment": {"into the void"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
