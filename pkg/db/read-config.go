package db

import (
	"fmt"
	"log/slog"
)

func DBConfigFromYamlObj(yamlObj DBConfigYaml, instanceIDs []string) DBConfig {
	connStr := yamlObj.ConnectionStr
	if connStr == "" {
		slog.Error("couldn't read DB connection string")
		panic("couldn't read DB connection string")
	}

	var URI string
	if yamlObj.Username != "" && yamlObj.Password != "" {
		URI = fmt.Sprintf(`mongodb%s://%s:%s@%s`, yamlObj.ConnectionPrefix, yamlObj.Username, yamlObj.Password, connStr)
	} else {
		URI = fmt.Sprintf(`mongodb%s://%s`, yamlObj.ConnectionPrefix, connStr)
	}

	return DBConfig{
		URI:              URI,
		Timeout:          yamlObj.Timeout,
		IdleConnTimeout:  yamlObj.IdleConnTimeout,
		MaxPoolSize:      uint64(yamlObj.MaxPoolSize),
		NoCursorTimeout:  yamlObj.UseNoCursorTimeout,
		DBNamePrefix:     yamlObj.DBNamePrefix,
		InstanceIDs:      instanceIDs,
		RunIndexCreation: yamlObj.RunIndexCreation,
	}
}
