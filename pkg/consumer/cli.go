package consumer

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/incidentparser/pkg/elastic_client"
	"github.com/travigo/incidentparser/pkg/emitter"
	"github.com/travigo/incidentparser/pkg/redis_client"
	"github.com/travigo/incidentparser/pkg/stats"
	"github.com/urfave/cli/v2"
)

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "metrics-prefix",
			Value:   "incidentparser",
			Usage:   "prefix for the prometheus metric names",
			EnvVars: []string{"INCIDENTPARSER_METRICS_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "sending-stream-name",
			Value:   emitter.DefaultStreamName,
			Usage:   "redis stream the parsed incidents are added to",
			EnvVars: []string{"INCIDENTPARSER_SENDING_STREAM_NAME"},
		},
		&cli.StringFlag{
			Name:    "stats-listen",
			Value:   ":8080",
			Usage:   "listen target for the stats server",
			EnvVars: []string{"INCIDENTPARSER_STATS_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "dedup-window",
			Usage:   "skip incidents already published within this window, 0 disables",
			EnvVars: []string{"INCIDENTPARSER_DEDUP_WINDOW"},
		},
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "also publish incidents to this NATS server",
			EnvVars: []string{"INCIDENTPARSER_NATS_URL"},
		},
		&cli.StringFlag{
			Name:    "nats-subject",
			Value:   emitter.DefaultNATSSubject,
			Usage:   "NATS subject prefix, incidents go to <subject>.<line>",
			EnvVars: []string{"INCIDENTPARSER_NATS_SUBJECT"},
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Value:   defaultReadCount,
			Usage:   "messages read per batch",
			EnvVars: []string{"INCIDENTPARSER_BATCH_SIZE"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Value:   defaultWorkers,
			Usage:   "messages parsed concurrently within a batch",
			EnvVars: []string{"INCIDENTPARSER_WORKERS"},
		},
	}
}

type services struct {
	collector *stats.Collector
	processor *Processor
	server    *stats.Server
	nats      *emitter.NATSEmitter
}

func setup(c *cli.Context, queueName string) (*services, error) {
	if err := redis_client.Connect(); err != nil {
		return nil, err
	}
	if err := elastic_client.Connect(false); err != nil {
		return nil, err
	}

	collector := stats.NewCollector(c.String("metrics-prefix"))

	streamEmitter, err := emitter.NewStreamEmitter(redis_client.Client, c.String("sending-stream-name"))
	if err != nil {
		return nil, err
	}

	r := &services{collector: collector}

	emitters := emitter.MultiEmitter{streamEmitter}
	if natsURL := c.String("nats-url"); natsURL != "" {
		r.nats, err = emitter.NewNATSEmitter(natsURL, c.String("nats-subject"))
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, r.nats)
	}

	var incidentEmitter emitter.Emitter = emitters
	if window := c.Duration("dedup-window"); window > 0 {
		incidentEmitter = emitter.NewDeduplicator(incidentEmitter, emitter.NewRedisHashCache(redis_client.Client, window), collector.DuplicateIncidents)
	}

	r.processor = NewProcessor(collector, incidentEmitter)
	r.processor.Workers = c.Int("workers")
	r.processor.Failures = NewElasticFailureRecorder()

	r.server = &stats.Server{
		Listen:          c.String("stats-listen"),
		Collector:       collector,
		Redis:           redis_client.Client,
		QueueConnection: redis_client.QueueConnection,
		QueueName:       queueName,
	}
	r.server.Start()

	return r, nil
}

func (r *services) close() {
	r.server.Shutdown()

	if r.nats != nil {
		r.nats.Close()
	}

	elastic_client.WaitUntilQueueEmpty()
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "consumer",
		Usage: "Parses incident reports into incidents",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "consume incident reports from the listening redis stream",
				Flags: append(sharedFlags(), &cli.StringFlag{
					Name:    "listening-stream-name",
					Value:   DefaultListeningStreamName,
					Usage:   "redis stream the incident reports are read from",
					EnvVars: []string{"INCIDENTPARSER_LISTENING_STREAM_NAME"},
				}),
				Action: func(c *cli.Context) error {
					r, err := setup(c, "")
					if err != nil {
						return err
					}
					defer r.close()

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					streamConsumer := StreamConsumer{
						Client:     redis_client.Client,
						StreamName: c.String("listening-stream-name"),
						Count:      int64(c.Int("batch-size")),
						Processor:  r.processor,
					}

					return streamConsumer.Run(ctx)
				},
			},
			{
				Name:  "queue",
				Usage: "consume incident reports from an rmq queue",
				Flags: append(sharedFlags(),
					&cli.StringFlag{
						Name:    "queue-name",
						Value:   DefaultQueueName,
						Usage:   "rmq queue the incident reports are read from",
						EnvVars: []string{"INCIDENTPARSER_QUEUE_NAME"},
					},
					&cli.IntFlag{
						Name:    "consumers",
						Value:   2,
						Usage:   "number of queue consumers",
						EnvVars: []string{"INCIDENTPARSER_QUEUE_CONSUMERS"},
					},
				),
				Action: func(c *cli.Context) error {
					r, err := setup(c, c.String("queue-name"))
					if err != nil {
						return err
					}
					defer r.close()

					queueConsumer := QueueConsumer{
						Connection:      redis_client.QueueConnection,
						QueueName:       c.String("queue-name"),
						NumberConsumers: c.Int("consumers"),
						BatchSize:       c.Int("batch-size"),
						Timeout:         2 * time.Second,
						Consumer:        &BatchConsumer{Processor: r.processor},
					}
					if _, err := queueConsumer.Setup(); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "return deliveries of dead queue consumers",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					StartCleaner(ctx, redis_client.QueueConnection)

					return nil
				},
			},
			{
				Name:      "publish",
				Usage:     "queue a test incident report",
				ArgsUsage: "<line> <problem>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "queue-name",
						Value:   DefaultQueueName,
						EnvVars: []string{"INCIDENTPARSER_QUEUE_NAME"},
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected <line> and <problem>", 1)
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					return PublishReport(redis_client.QueueConnection, c.String("queue-name"), c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}
