// Package config handles loading and validating WildTrace API configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Secrets (JWT secret, MQTT password) should be set via environment variables
//   - SUPABASE_JWT_SECRET and SUPABASE_PROJECT_REF are accepted for compatibility
//     with the identity provider's standard variable names
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
