package main

import (
	"context"
	gflag "flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luismorlan/feedcast/app_setting"
	"github.com/Luismorlan/feedcast/broadcast"
	"github.com/Luismorlan/feedcast/engine"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/feedinsert"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/render"
	"github.com/Luismorlan/feedcast/store"
	"github.com/Luismorlan/feedcast/utils"
	"github.com/Luismorlan/feedcast/utils/dotenv"
	"github.com/Luismorlan/feedcast/utils/flag"
	Logger "github.com/Luismorlan/feedcast/utils/log"
)

// Number of workers reading the feed insertion queue concurrently.
const workerCount = 4

func main() {
	gflag.Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Logger.InitLogger()
	defer func() {
		utils.CloseTracer()
		Logger.Log.Info("feed inserter shutdown")
	}()

	setting, err := app_setting.ParseDispatcherAppSetting(flag.AppSettingPath)
	if err != nil {
		Logger.Log.Fatal("fail to load app setting: ", err)
	}
	utils.StartTracer()

	ctx, cancel := context.WithCancel(context.Background())

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("fail to connect database: ", err)
	}
	redisClient, err := utils.GetRedisClient(ctx)
	if err != nil {
		Logger.Log.Fatal("fail to connect redis: ", err)
	}
	reader, err := queue.NewSQSReader(ctx, queue.NewSQSClient(), setting.FEED_INSERTION_QUEUE_NAME, setting.QUEUE_READ_TIMEOUT_SECOND)
	if err != nil {
		Logger.Log.Fatal("fail to initialize feed insertion queue reader: ", err)
	}

	statsdClient := utils.NewDogStatsdClient()
	feeds := feed.NewRedisStore(redisClient, setting.FEED_MAX_ITEMS)
	transport := broadcast.NewRedisTransport(redisClient)
	cache := render.NewRedisPayloadCache(redisClient, setting.PayloadCacheTTL())
	renderer := render.NewJSONRenderer(setting.LOCAL_DOMAIN)

	modules := []engine.Module{}
	for i := 0; i < workerCount; i++ {
		modules = append(modules, &feedinsert.Worker{
			Reader:      reader,
			Statuses:    store.NewStatusStore(db),
			Graph:       store.NewGraphStore(db),
			Antennas:    store.NewRuleStore(db),
			Feeds:       feeds,
			Transport:   transport,
			Cache:       cache,
			Renderer:    renderer,
			Statsd:      statsdClient,
			LocalDomain: setting.LOCAL_DOMAIN,
		})
	}
	e := engine.NewEngine(modules, ctx, cancel, nil)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		e.Shutdown()
	}()

	// blocking call.
	e.Run()
}
