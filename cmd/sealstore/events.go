package main

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli"

	"github.com/kochabx/sealstore/app"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/store/kafka"
)

func eventsCommand() cli.Command {
	return cli.Command{
		Name:  "events",
		Usage: "blob lifecycle events",
		Subcommands: []cli.Command{
			{
				Name:  "watch",
				Usage: "print put and delete events as JSON lines until interrupted",
				Flags: []cli.Flag{
					cli.StringFlag{Name: "group, g", Value: "sealstore-cli", Usage: "consumer group id"},
				},
				Action: watchEvents,
			},
		},
	}
}

func watchEvents(c *cli.Context) error {
	rt := runtimeFrom(c)
	if !rt.config.Events.Enabled {
		return errors.InvalidArgument("events are disabled, set events.enabled")
	}

	client, err := kafka.New(&rt.config.Events.Kafka, kafka.WithLogger(rt.logger))
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create event consumer")
	}

	lc := app.New(
		app.WithLogger(rt.logger),
		app.WithCloseTimeout(rt.config.CloseTimeout),
		app.WithClose("events", func(context.Context) error { return client.Close() }, 0),
	)

	// long-running: follow log level changes in the config file
	if rt.loader != nil {
		if err := rt.loader.Watch(); err != nil {
			rt.logger.Warn().Err(err).Msg("config watch unavailable")
		}
	}

	enc := json.NewEncoder(c.App.Writer)
	return lc.Run(func(ctx context.Context) error {
		rt.logger.Info().
			Str("topic", client.Config().Topic).
			Str("group", c.String("group")).
			Msg("watching events")
		return client.Subscribe(ctx, c.String("group"), func(ev kafka.Event) error {
			return enc.Encode(ev)
		})
	})
}
