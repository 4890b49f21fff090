// Package config provides configuration parsing for rrbuilder projects.
//
// The configuration is stored in rrbuilder.json (or rrbuilder.toml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "manifest": "routes.yaml",
//	  "output": "routes.json",
//	  "format": "flat",
//	  "encoding": "json",
//	  "pathConflict": "allow",
//	  "logging": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 4100,
//	    "watch": true,
//	    "interval": "500ms"
//	  },
//	  "s3": {
//	    "region": "us-east-1"
//	  }
//	}
//
// Environment variables RRBUILDER_MANIFEST, RRBUILDER_OUTPUT,
// RRBUILDER_LOG_LEVEL and RRBUILDER_LOG_FORMAT override the file.
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Manifest:", cfg.ManifestPath())
package config
