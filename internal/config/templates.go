package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Stock Notifier Configuration

[monitor]
# Tickers to watch when none are given on the command line
symbols = []
# Seconds between polling rounds
interval = 60
# Alert when the price drops below this value (0 disables)
lower = 0.0
# Alert when the price rises above this value (0 disables)
upper = 0.0
# Print a status line when a price is within thresholds
show_status = true
# Longest time one alert may spend on its notifications and event log
delivery_timeout = "60s"

[provider]
# Quote provider: "yahoo" or "kite"
name = "yahoo"
# HTTP timeout per request
timeout = "10s"
yahoo_base_url = "https://query1.finance.yahoo.com"
search_base_url = "https://query2.finance.yahoo.com"
# Resolve unknown company names through Yahoo search
search_enabled = true
# Exchange prefix for Kite quotes
kite_exchange = "NSE"

[notifications.desktop]
enabled = true
timeout = "10s"
icon = ""
# Ring the terminal bell with each pop-up
bell = false

[notifications.console]
enabled = true
color = true

[notifications.email]
enabled = false
smtp_host = "smtp.gmail.com"
smtp_port = 587
from = ""
to = ""

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
chat_id = ""

[storage]
# Append-only, human-readable alert log
event_log = ""
# SQLite database with alert history
db_path = ""
# Rotate the alert log after this many megabytes
max_size_mb = 50
# Rotated files to keep (0 keeps all)
max_backups = 0

[log]
# Level: debug, info, warn, error
level = "info"
file = true
path = ""
`

const credentialsTemplate = `# Stock Notifier Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[smtp]
username = ""
password = ""

[kite]
api_key = ""
access_token = ""

[telegram]
bot_token = ""
`

func createTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}

	return nil
}
