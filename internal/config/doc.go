// Package config provides configuration loading for the scconsole client.
//
// The configuration is stored in scconsole.json, with environment variable
// overrides prefixed SCCONSOLE_.
//
// # Configuration File Structure
//
//	{
//	  "server_url": "wss://control.example.com",
//	  "token": "op-token",
//	  "debug_addr": "127.0.0.1:9090",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Server:", cfg.ServerURL)
package config
