package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	App AppConfig
	DB  DBConfig
}

type AppConfig struct {
	Port    string
	Version string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.App.Version = viper.GetString("APP_VERSION")
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")

	return &cfg, nil
}
