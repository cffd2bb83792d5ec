// Package config assembles the mailmerge runtime configuration.
//
// Values are layered from lowest to highest precedence:
//
//  1. Default()
//  2. an optional YAML file (--config), with ${VAR} references expanded
//  3. the environment, including a .env file in the working directory
//  4. command-line flags, applied with Config.Override
//
// Environment keys keep the names of the original mail tool (SMTP_HOST,
// SENDER_EMAIL, APP_PASSWORD, TEMPLATE_ROOT, CONTACTS_CSV, SLEEP_SECONDS,
// TZ_NAME, LOG_DIR, ATTACH_LANG_DIR, ...). Nested sections reuse the env
// tags declared by the packages that own them, such as smtp.Config and
// db.Config.
package config
