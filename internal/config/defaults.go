package config

// GetDefaultConfigTemplate returns a fully commented config template that
// helps users understand all available options.
func GetDefaultConfigTemplate() string {
	return `# devrun configuration
# Project file: .devrun/config.yml  User file: ~/.config/devrun/config.yml
# Every key can be overridden with a DEVRUN_* environment variable.

# Container orchestration
compose_cmd: [docker-compose]         # e.g. [docker, compose] for the plugin form
compose_file: ""                      # explicit compose file ("" = orchestrator default)

# External tools
server_cmd: [uvicorn, app.main:app, --reload]
migrate_cmd: [alembic]                # migration tool; devrun appends its arguments
test_cmd: [pytest]
lint_cmd: [ruff, check, .]
format_cmd: [ruff, format, .]
install_cmd: [pip, install, -r, requirements.txt]

# Dispatch behaviour
db_warmup: 3s                         # wait after starting services before migrating
skip_confirmations: false             # answer prompts with an empty line (or DEVRUN_YES=1)

# Paths cleaned up by 'devrun clean'
log_dir: logs
db_file: ./app.db
server_log: logs/app.log              # tailed by 'devrun logs'

# Environment
env_file: .env                        # loaded before dispatch when present

# Run history
history_db: ""                        # "" = <state dir>/history.db
max_history_entries: 500

# Custom commands (may not shadow built-ins)
# commands:
#   psql:
#     description: Open a database shell
#     steps:
#       - run: docker-compose exec db psql -U postgres
`
}

// GetDefaults returns the default configuration values. They match the
// project this tool grew up in: compose-managed services, alembic
// migrations, a uvicorn server, ruff, and pip.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"compose_cmd":  []string{"docker-compose"},
		"compose_file": "",

		"server_cmd":  []string{"uvicorn", "app.main:app", "--reload"},
		"migrate_cmd": []string{"alembic"},
		"test_cmd":    []string{"pytest"},
		"lint_cmd":    []string{"ruff", "check", "."},
		"format_cmd":  []string{"ruff", "format", "."},
		"install_cmd": []string{"pip", "install", "-r", "requirements.txt"},

		"db_warmup":          "3s",
		"skip_confirmations": false,

		"log_dir":    "logs",
		"db_file":    "./app.db",
		"server_log": "logs/app.log",

		"env_file": ".env",

		"history_db":          "",
		"max_history_entries": 500,
	}
}
