// Package cli implements the interactive command-line client for the
// auth server.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/ttttiu/WAS/internal/client/client"
	"github.com/ttttiu/WAS/internal/client/config"
)

type App struct {
	config   *config.Config
	api      *client.AuthClient
	token    string
	userName string
	role     string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	api := client.NewAuthClient(c.ServerURL, c.RequestTimeout)
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}
