package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/config"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/validate"
	"github.com/spf13/cobra"
)

// openConfig is replaced in tests.
var openConfig = config.OpenDefault

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored defaults",
	Long: `Read and write the defaults ` + branding.CLIName() + ` falls back to when a flag is not given.
They are stored at ~/` + branding.HomeDir() + `/config.json and can be overridden with ` +
		branding.EnvPrefix() + `_* environment variables.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one value, or the whole config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}

		var value any
		if len(args) == 1 {
			value = store.Get(args[0])
		} else {
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			all := make(map[string]any, len(keys))
			for _, k := range keys {
				all[k] = store.Get(k)
			}
			value = all
		}
		return printValue(cmd, value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value (true, false, null and JSON literals are parsed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the stored config; exits non-zero when missing or invalid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}

		result, err := store.Check()
		if errors.Is(err, config.ErrEmpty) {
			return fmt.Errorf("no config found at %s, run '%s config init'", store.Path(), branding.CLIName())
		}
		if err != nil {
			return err
		}
		if !result.Valid {
			for _, issue := range result.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", issue)
			}
			return fmt.Errorf("config %s is invalid (%d issues)", store.Path(), len(result.Issues))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Config is valid")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively store defaults for new services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		console := ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err := initConfig(store, ui.NewTerminal()); err != nil {
			return err
		}
		console.Success("Config saved to %s", store.Path())
		return nil
	},
}

// initConfig asks for each default, offering the stored value, and writes
// the answers.
func initConfig(store *config.Store, p ui.Prompter) error {
	current, err := store.Defaults()
	if err != nil {
		return err
	}
	set := func(key, value string) error {
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		return nil
	}

	author, err := p.AskText("Author's full name:", current.Author)
	if err != nil {
		return err
	}
	email, err := p.AskText("Author's email:", current.Email)
	if err != nil {
		return err
	}
	if email = strings.TrimSpace(email); email != "" && !validate.IsEmail(email) {
		return validate.Errorf("email", email, "expected an email address")
	}
	license, err := p.AskText("Default license:", current.License)
	if err != nil {
		return err
	}
	template, err := p.AskText("Default template (name, path or git URL):", current.Template)
	if err != nil {
		return err
	}
	for key, value := range map[string]string{
		config.KeyAuthor:   author,
		config.KeyEmail:    email,
		config.KeyLicense:  license,
		config.KeyTemplate: template,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if err := set(key, strings.TrimSpace(value)); err != nil {
			return err
		}
	}

	useGit, err := p.AskConfirm("Automatically create GitHub repositories for new services?", current.UseGit)
	if err != nil {
		return err
	}
	if err := set(config.KeyUseGit, strconv.FormatBool(useGit)); err != nil {
		return err
	}
	if useGit {
		ns, err := p.AskText("GitHub organization or user name:", current.GitHubNamespace())
		if err != nil {
			return err
		}
		if !validate.IsNamespace(ns) {
			return validate.Errorf("github namespace", ns, "only letters, digits, dashes and underscores are allowed")
		}
		if err := set(config.KeyGitBaseURL, "git@"+branding.GitHubHost()+":"+ns); err != nil {
			return err
		}

		private, err := p.AskConfirm("Create private repositories?", current.GitRepoPrivate)
		if err != nil {
			return err
		}
		if err := set(config.KeyGitRepoPrivate, strconv.FormatBool(private)); err != nil {
			return err
		}

		saveToken, err := p.AskConfirm("Save a GitHub auth token in the local config?", current.GitHubAuthToken != "")
		if err != nil {
			return err
		}
		if saveToken {
			token, err := p.AskSecret("GitHub auth token:")
			if err != nil {
				return err
			}
			if !validate.IsGitHubToken(token) {
				return validate.Errorf("github token", "***", "expected 40 lowercase hex characters")
			}
			if err := set(config.KeyGitHubAuthToken, token); err != nil {
				return err
			}
		}
	}

	useDocker, err := p.AskConfirm("Publish new services to Docker Hub?", current.UseDocker)
	if err != nil {
		return err
	}
	if err := set(config.KeyUseDocker, strconv.FormatBool(useDocker)); err != nil {
		return err
	}
	if useDocker {
		ns, err := p.AskText("Docker Hub namespace:", current.DockerHubNamespace)
		if err != nil {
			return err
		}
		if !validate.IsNamespace(ns) {
			return validate.Errorf("docker namespace", ns, "only letters, digits, dashes and underscores are allowed")
		}
		if err := set(config.KeyDockerHubNamespace, ns); err != nil {
			return err
		}

		saveCreds, err := p.AskConfirm("Save Docker Hub credentials in the local config?", current.DockerHubUser != "")
		if err != nil {
			return err
		}
		if saveCreds {
			user, err := p.AskText("Docker Hub user:", current.DockerHubUser)
			if err != nil {
				return err
			}
			if user = strings.TrimSpace(user); user == "" {
				return fmt.Errorf("docker hub user: %w", ui.ErrEmptyAnswer)
			}
			password, err := p.AskSecret("Docker Hub password:")
			if err != nil {
				return err
			}
			if password = strings.TrimSpace(password); password == "" {
				return fmt.Errorf("docker hub password: %w", ui.ErrEmptyAnswer)
			}
			if err := set(config.KeyDockerHubUser, user); err != nil {
				return err
			}
			if err := store.SetString(config.KeyDockerHubPassword, password); err != nil {
				return fmt.Errorf("setting config key %q: %w", config.KeyDockerHubPassword, err)
			}
		}
	}
	return nil
}

func printValue(cmd *cobra.Command, value any) error {
	out := cmd.OutOrStdout()
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		fmt.Fprintln(out, v)
		return nil
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
