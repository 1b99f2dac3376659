package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-directory/pkg/client"
	"gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

// inputFlags collects the values of a contact from the command line.
type inputFlags struct {
	name      string
	birthDate string
	email     string
	phone     string
	address   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.birthDate, "birth-date", "", "birth date as YYYY-MM-DD")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number (optional)")
	cmd.Flags().StringVar(&f.address, "address", "", "postal address (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("birth-date")
	_ = cmd.MarkFlagRequired("email")
}

// toInput builds the request body. Optional values are only sent when their flag was given.
func (f *inputFlags) toInput(cmd *cobra.Command) (model.ContactInput, error) {
	birthDate, err := model.ParseDate(f.birthDate)
	if err != nil {
		return model.ContactInput{}, err
	}
	in := model.ContactInput{Name: f.name, BirthDate: &birthDate, Email: f.email}
	if cmd.Flags().Changed("phone") {
		in.Phone = &f.phone
	}
	if cmd.Flags().Changed("address") {
		in.Address = &f.address
	}
	return in, nil
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func newListCommand(server func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contacts ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := client.New(server(), nil).List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contacts)
		},
	}
}

func newGetCommand(server func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contact, err := client.New(server(), nil).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contact)
		},
	}
}

func newCreateCommand(server func() string) *cobra.Command {
	var flags inputFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.toInput(cmd)
			if err != nil {
				return err
			}
			contact, err := client.New(server(), nil).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contact)
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCommand(server func() string) *cobra.Command {
	var flags inputFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace all values of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.toInput(cmd)
			if err != nil {
				return err
			}
			contact, err := client.New(server(), nil).Update(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contact)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCommand(server func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(server(), nil).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return err
		},
	}
}
