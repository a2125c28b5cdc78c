package main

import (
	"context"
	gflag "flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luismorlan/feedcast/app_setting"
	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/Luismorlan/feedcast/engine"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/notify"
	"github.com/Luismorlan/feedcast/publisher"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/server"
	"github.com/Luismorlan/feedcast/store"
	"github.com/Luismorlan/feedcast/utils"
	"github.com/Luismorlan/feedcast/utils/dotenv"
	"github.com/Luismorlan/feedcast/utils/flag"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Logger.Log.Info("publisher shutdown")
}

func main() {
	gflag.Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Service name and env are only known after flags and envs are loaded.
	Logger.InitLogger()
	defer cleanup()

	setting, err := app_setting.ParseDispatcherAppSetting(flag.AppSettingPath)
	if err != nil {
		Logger.Log.Fatal("fail to load app setting: ", err)
	}

	utils.StartTracer()
	if !flag.IsDevelopment {
		if err := utils.StartProfiler(); err != nil {
			Logger.Log.WithError(err).Warn("profiler disabled")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("fail to connect database: ", err)
	}
	redisClient, err := utils.GetRedisClient(ctx)
	if err != nil {
		Logger.Log.Fatal("fail to connect redis: ", err)
	}
	sqsClient := queue.NewSQSClient()
	jobs, err := queue.NewSQSReader(ctx, sqsClient, setting.DISTRIBUTION_QUEUE_NAME, setting.QUEUE_READ_TIMEOUT_SECOND)
	if err != nil {
		Logger.Log.Fatal("fail to initialize distribution queue reader: ", err)
	}
	insertions, err := queue.NewSQSWriter(ctx, sqsClient, setting.FEED_INSERTION_QUEUE_NAME)
	if err != nil {
		Logger.Log.Fatal("fail to initialize feed insertion queue writer: ", err)
	}

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
	statsdClient := utils.NewDogStatsdClient()
	transport := broadcast.NewRedisTransport(redisClient)
	graph := store.NewGraphStore(db)
	statuses := store.NewStatusStore(db)

	d := dispatcher.New(setting.ToConfig(), dispatcher.Deps{
		Rules:         store.NewRuleStore(db),
		Graph:         graph,
		Conversations: store.NewConversationStore(db),
		Queue:         insertions,
		Feeds:         feed.NewRedisStore(redisClient, setting.FEED_MAX_ITEMS),
		Transport:     transport,
		Renderer:      render.NewJSONRenderer(setting.LOCAL_DOMAIN),
		Cache:         render.NewRedisPayloadCache(redisClient, setting.PayloadCacheTTL()),
		Notifier:      notify.NewEventBusNotifier(eventbus),
		Statsd:        statsdClient,
	})

	processor := publisher.NewDistributionMessageProcessor(jobs, statuses, d)
	processor.Statsd = statsdClient

	modules := []engine.Module{
		// Reads distribution jobs and dispatches each status.
		processor,
		// Forwards mention and edit notifications to live channels.
		notify.NewRelay(eventbus, transport),
	}
	if flag.AdminAddr != "" {
		modules = append(modules, &server.AdminModule{
			Addr:   flag.AdminAddr,
			Router: server.NewRouter(flag.ServiceName, statuses, d),
		})
	}
	e := engine.NewEngine(modules, ctx, cancel, eventbus)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		e.Shutdown()
	}()

	// blocking call.
	e.Run()
}
