/*
Package config loads svnsync configuration.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	   +--------+------+-----+--------+
	   |        |            |        |
	+--+---+ +--+---+    +---+--+ +---+--+
	| YAML | | JSON |    | HCL  | | TOML |
	+------+ +------+    +------+ +------+

🎯 Purpose:
- Picks a parser by file extension
- Decodes over Default so absent keys keep their defaults
- Rejects unknown keys in every format
- Reads env_file with godotenv for the svn environment

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, "", ".")
	if err != nil {
		return err
	}
	env, err := cfg.Environment()
*/
package config
