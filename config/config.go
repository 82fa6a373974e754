package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Configuration struct {
	ConftrailDsn      string
	ManagementDsn     string
	GitConfigurations string
	GitLocalPath      string
	WebAddr           string
	SSHUsername       string
	SSHPassword       string
	SSHPort           int
	SSHCommand        string
}

func LoadEnvConfig(configName string) Configuration {
	err := godotenv.Load(configName)
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	conftrailDsn := os.Getenv("CONFTRAIL_DSN")
	if conftrailDsn == "" {
		log.Fatal("CONFTRAIL_DSN is required")
	}
	managementDsn := os.Getenv("CONFTRAIL_MANAGEMENT_DSN")
	gitConfigurations := os.Getenv("GIT_CONFIGURATIONS")
	gitLocalPath := os.Getenv("GIT_LOCAL_PATH")
	if gitLocalPath == "" {
		gitLocalPath = "git/configurations"
	}
	webAddr := os.Getenv("WEB_ADDR")
	if webAddr == "" {
		webAddr = ":8080"
	}

	sshPort := 22
	if raw := os.Getenv("DEVICE_SSH_PORT"); raw != "" {
		sshPort, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("failed to parse DEVICE_SSH_PORT: %v", err)
		}
	}

	return Configuration{
		ConftrailDsn:      conftrailDsn,
		ManagementDsn:     managementDsn,
		GitConfigurations: gitConfigurations,
		GitLocalPath:      gitLocalPath,
		WebAddr:           webAddr,
		SSHUsername:       os.Getenv("DEVICE_SSH_USERNAME"),
		SSHPassword:       os.Getenv("DEVICE_SSH_PASSWORD"),
		SSHPort:           sshPort,
		SSHCommand:        os.Getenv("DEVICE_SSH_COMMAND"),
	}
}
