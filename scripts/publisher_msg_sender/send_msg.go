package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Luismorlan/feedcast/app_setting"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/utils/dotenv"
)

// This binary enqueues one distribution job, for end to end testing.
func main() {
	statusID := flag.Int64("status_id", 0, "id of the status to distribute")
	edit := flag.Bool("edit", false, "distribute as an edit")
	settingPath := flag.String("config", "app_setting/dispatcher_app_setting.yaml", "path to dispatcher app setting")
	flag.Parse()

	dotenv.LoadDotEnvs()

	setting, err := app_setting.ParseDispatcherAppSetting(*settingPath)
	if err != nil {
		log.Fatalln("Failed to load app setting:", err)
	}

	ctx := context.Background()
	writer, err := queue.NewSQSWriter(ctx, queue.NewSQSClient(), setting.DISTRIBUTION_QUEUE_NAME)
	if err != nil {
		log.Fatalln("Failed to open queue:", err)
	}
	if err := writer.SendDistributionJob(ctx, queue.DistributionJob{StatusID: *statusID, Edit: *edit}); err != nil {
		fmt.Println("Failed to send message:", err)
		return
	}
	fmt.Println("Success", *statusID)
}
