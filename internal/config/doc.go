// Package config provides configuration parsing for inplace projects.
//
// The configuration is stored in inplace.json (or inplace.yaml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "demo",
//	  "render": {
//	    "pretty": false,
//	    "indent": "  ",
//	    "placeholderClass": "child_placeholder"
//	  },
//	  "runtime": {
//	    "strictSlots": true,
//	    "logLevel": "info",
//	    "logFormat": "text"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "metrics": true,
//	    "tracing": false
//	  },
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "bucket": "",
//	    "prefix": "inplace/",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Address())
package config
