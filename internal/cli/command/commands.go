package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/command"
	"github.com/yndnr/respkv/internal/protocol/frame"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: respkv-cli get <key>", 2)
			}
			return run(c, command.NewGet(c.Args().First()).IntoFrame())
		},
	}
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server is reachable",
		ArgsUsage: "[message]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return cli.Exit("usage: respkv-cli ping [message]", 2)
			}
			var msg []byte
			if c.NArg() == 1 {
				msg = []byte(c.Args().First())
			}
			return run(c, command.NewPing(msg).IntoFrame())
		},
	}
}

// run sends req to the configured server and prints the reply.
func run(c *cli.Context, req frame.Array) error {
	flags := ParseGlobalFlags(c)

	formatter, err := output.NewFormatter(output.Format(flags.Output))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	client, err := Dial(ctx, flags.Server)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer client.Close()

	reply, err := client.Do(ctx, req)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return formatter.Format(c.App.Writer, reply)
}
