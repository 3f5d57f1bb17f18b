// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/linguachat/encryption/cmd/app/commands"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Conversation encryption service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-master-key",
				Usage: "Generate a new master key for envelope encryption",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kms-provider",
						Aliases: []string{"p"},
						Value:   "",
						Usage:   "KMS provider (gcpkms, awskms, azurekeyvault, hashivault, localsecrets)",
					},
					&cli.StringFlag{
						Name:    "kms-key-uri",
						Aliases: []string{"u"},
						Value:   "",
						Usage:   "KMS key URI used to encrypt the master key before output",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterKey(
						ctx,
						cryptoService.NewKMSService(),
						os.Stdout,
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
