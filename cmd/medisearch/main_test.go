package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newApp := func(level string) *cli.App {
		return &cli.App{
			Name: "medisearch",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: level},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			err := newApp(level).Run([]string{"medisearch"})
			assert.NoError(t, err, "level %q", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := newApp("verbose").Run([]string{"medisearch"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestParseID(t *testing.T) {
	run := func(args ...string) error {
		app := &cli.App{
			Name: "medisearch",
			Commands: []*cli.Command{
				{
					Name: "probe",
					Action: func(c *cli.Context) error {
						_, err := parseID(c)
						return err
					},
				},
			},
		}
		return app.Run(append([]string{"medisearch", "probe"}, args...))
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, run("12345678901234"))
	})

	t.Run("missing", func(t *testing.T) {
		err := run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document ID argument")
	})

	t.Run("not a number", func(t *testing.T) {
		err := run("abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid document ID")
	})
}

func TestUploadRequest(t *testing.T) {
	run := func(probe func(c *cli.Context) error, args ...string) error {
		app := &cli.App{
			Name: "medisearch",
			Commands: []*cli.Command{
				{
					Name:   "probe",
					Flags:  ingestFlags(),
					Action: probe,
				},
			},
		}
		return app.Run(append([]string{"medisearch", "probe"}, args...))
	}

	t.Run("content argument", func(t *testing.T) {
		err := run(func(c *cli.Context) error {
			req, err := uploadRequest(c)
			require.NoError(t, err)
			assert.Equal(t, "Visit note", req.Title)
			assert.Equal(t, "patient stable today", req.Content)
			return nil
		}, "--title", "Visit note", "patient", "stable", "today")
		assert.NoError(t, err)
	})

	t.Run("file flag", func(t *testing.T) {
		err := run(func(c *cli.Context) error {
			req, err := uploadRequest(c)
			require.NoError(t, err)
			assert.Equal(t, "note.txt", req.FileRef)
			assert.Empty(t, req.Content)
			return nil
		}, "--title", "Visit note", "--file", "note.txt")
		assert.NoError(t, err)
	})

	t.Run("neither content nor file", func(t *testing.T) {
		err := run(func(c *cli.Context) error {
			_, err := uploadRequest(c)
			return err
		}, "--title", "Visit note")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content argument or --file")
	})
}
