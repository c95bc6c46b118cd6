package utils

import "os"

func LoadEnv(key string) string {
	value, _ := os.LookupEnv(key)
	return value
}

func LoadEnvWithDefault(key string, fallback string) string {
	value, valid := os.LookupEnv(key)
	if !valid || value == "" {
		return fallback
	}
	return value
}
