package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/db"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
)

const (
	emailFlag    = "email"
	nameFlag     = "name"
	passwordFlag = "password"
	roleFlag     = "role"
)

var createAdminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "E-mail used to log in (required)",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "",
		Usage: "Display name",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password, at least 8 characters (required)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: string(models.RoleAdmin),
		Usage: "Role: admin or editor",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register a back-office user",
		Example: `  server create-admin --email dona@ravicjoias.com.br --name "Dona Ravic" --password 's3gredo!' --role admin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			gdb, err := db.Open(cfg.DatabaseDSN, logging.Component(logger, "db"))
			if err != nil {
				return err
			}
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			if err := db.Migrate(gdb, cfg.OrderTables...); err != nil {
				return err
			}

			// tokens and limiter are unused when only creating users
			svc := auth.NewService(gdb, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), auth.NewLimiter(1, 1), logging.Component(logger, "auth"))
			u, err := svc.CreateAdmin(cmd.Context(),
				createAdminFlags[emailFlag].GetString(),
				createAdminFlags[nameFlag].GetString(),
				createAdminFlags[passwordFlag].GetString(),
				models.Role(createAdminFlags[roleFlag].GetString()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, createAdminFlags)
	return cmd
}
