package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = fmt.Sprintf("(%s %s)", a.userName, a.role)
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the auth CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
