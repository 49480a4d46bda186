// Package config manages gstack configuration and state persistence.
//
// It handles:
//   - The tracked stack configuration shared by the team (.gstack_config.json)
//   - The local operation record for interrupted multi-branch commands
//   - User settings read through viper
package config
