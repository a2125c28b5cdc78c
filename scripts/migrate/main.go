package main

import (
	"log"

	"github.com/Luismorlan/feedcast/utils"
	"github.com/Luismorlan/feedcast/utils/dotenv"
)

// This binary creates or updates every table the distribution services read.
func main() {
	dotenv.LoadDotEnvs()

	db, err := utils.GetDBConnection()
	if err != nil {
		log.Fatalln("Failed to connect database:", err)
	}
	if err := utils.DatabaseSetupAndMigration(db); err != nil {
		log.Fatalln("Failed to migrate:", err)
	}
	log.Println("Migration done")
}
