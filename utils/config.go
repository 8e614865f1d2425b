package utils

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var EtcDir = "."
var DataDir = "."

type ServiceConfig struct {
	WarpHostname   string   `json:"warp_hostname"`
	CatalogAddress string   `json:"catalog_address"`
	WorkerNodes    []string `json:"worker_nodes"`
	TempDir        string   `json:"temp_dir"`
}

// WorkerConfig drives the warp worker pool: how many worker processes to
// fork, how many tasks each serves before being recycled, and the per-run
// warp defaults applied when a request leaves them unset.
type WorkerConfig struct {
	PoolSize           int     `json:"pool_size"`
	MaxTasksPerWorker  int     `json:"max_tasks_per_worker"`
	ExecutablePath     string  `json:"executable_path"`
	WarpMemoryLimitMB  float64 `json:"warp_memory_limit_mb"`
	WarpWorkers        int     `json:"warp_workers"`
	MaxGrpcRecvMsgSize int     `json:"max_grpc_recv_msg_size"`
}

type MetricsConfig struct {
	LogDir         string `json:"log_dir"`
	MaxLogFileSize int64  `json:"max_log_file_size"`
	MaxLogFiles    int    `json:"max_log_files"`
}

type Config struct {
	ServiceConfig ServiceConfig `json:"service_config"`
	WorkerConfig  WorkerConfig  `json:"worker_config"`
	MetricsConfig MetricsConfig `json:"metrics_config"`
}

const DefaultRecvMsgSize = 10 * 1024 * 1024
const DefaultPoolSize = 4
const DefaultMaxTasksPerWorker = 200

// LoadConfigFile unmarshals the config.json document and fills in the
// defaults for anything left unset.
func (config *Config) LoadConfigFile(configFile string) error {
	*config = Config{}
	cfg, err := ioutil.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
	}

	err = json.Unmarshal(cfg, config)
	if err != nil {
		return fmt.Errorf("Error at JSON parsing config document: %s. Error: %v", configFile, err)
	}

	if config.WorkerConfig.PoolSize <= 0 {
		config.WorkerConfig.PoolSize = DefaultPoolSize
	}
	if config.WorkerConfig.MaxTasksPerWorker <= 0 {
		config.WorkerConfig.MaxTasksPerWorker = DefaultMaxTasksPerWorker
	}
	if config.WorkerConfig.MaxGrpcRecvMsgSize <= 0 {
		config.WorkerConfig.MaxGrpcRecvMsgSize = DefaultRecvMsgSize
	}
	if config.ServiceConfig.TempDir == "" {
		config.ServiceConfig.TempDir = os.TempDir()
	}
	return nil
}

// WatchConfig reloads the config document on SIGHUP.
func WatchConfig(infoLog, errLog *log.Logger, configFile string, config *Config) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-sighup:
				infoLog.Println("Caught SIGHUP, reloading config...")
				newConfig := &Config{}
				if err := newConfig.LoadConfigFile(configFile); err != nil {
					errLog.Printf("Error in loading config file: %v\n", err)
					continue
				}
				*config = *newConfig
			}
		}
	}()
}
