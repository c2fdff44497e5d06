package configs

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables understood by every node. Flags win over env.
const (
	EnvRole        = "ROLE"
	EnvBackupPeers = "BACKUP_PEERS"
	EnvReplicaID   = "REPLICA_ID"
	EnvReplicaPort = "REPLICA_PORT"
	EnvPeers       = "PEERS"
	EnvPort        = "PORT"
)

func EnvString(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		res, err := strconv.Atoi(v)
		CheckError(err)
		return res
	}
	return def
}

// EnvAddressList parses a comma separated host:port list.
func EnvAddressList(key string) []string {
	v := EnvString(key, "")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
