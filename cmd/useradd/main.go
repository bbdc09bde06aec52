// Command useradd creates a gophdrive account directly in the configured
// metadata store. It accepts the server's configuration flags plus -email.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/gophdrive/internal/admin"
	"github.com/dmitrijs2005/gophdrive/internal/flagx"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

func main() {

	var email string
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&email, "email", "", "email of the new user")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-email"}))

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONSlogLogger(os.Stderr, "warn")

	m, closeFn, err := server.OpenRepositoryManager(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeFn()

	users := services.NewUserService(m, cfg, logger)
	if _, err := admin.AddUser(ctx, users, bufio.NewReader(os.Stdin), os.Stdout, email); err != nil {
		_ = closeFn()
		log.Fatalf("%v", err)
	}

}
