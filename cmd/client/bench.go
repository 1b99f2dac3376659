package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contact-directory/pkg/client"
	"gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

func newBenchCommand(server func() string) *cobra.Command {
	var sizes []int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the average duration of POST, PUT, GET and DELETE requests in microseconds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), cmd.OutOrStdout(), client.New(server(), nil), sizes)
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{1000, 5000, 10000, 50000, 100000}, "number of contacts per round")
	return cmd
}

// benchInput is the contact that is created and updated over and over again.
func benchInput() model.ContactInput {
	birthDate := model.NewDate(27, time.November, 9)
	phone := "+39 999 777 555"
	return model.ContactInput{
		Name:      "Marcus Antonius",
		BirthDate: &birthDate,
		Email:     "marcus@example.com",
		Phone:     &phone,
	}
}

func runBench(ctx context.Context, out io.Writer, c *client.Client, sizes []int) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Elements      POST       PUT       GET    DELETE ")
	fmt.Fprintln(out, "---------------------------------------------------")
	in := benchInput()
	for _, loops := range sizes {
		if loops < 1 {
			continue
		}
		fmt.Fprintf(out, "%10d", loops)

		// POST requests
		ids := make([]string, 0, loops)
		var duration time.Duration
		for i := 0; i < loops; i++ {
			start := time.Now()
			contact, err := c.Create(ctx, in)
			if err != nil {
				return err
			}
			duration += time.Since(start)
			ids = append(ids, contact.Id)
		}
		fmt.Fprintf(out, "%10d", duration.Microseconds()/int64(loops))

		rounds := []func(id string) error{
			func(id string) error { _, err := c.Update(ctx, id, in); return err },
			func(id string) error { _, err := c.Get(ctx, id); return err },
			func(id string) error { return c.Delete(ctx, id) },
		}
		for _, f := range rounds {
			avg, err := callInRandomOrder(ids, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%10d", avg.Microseconds())
		}
		fmt.Fprintln(out)
	}
	return nil
}

// callInRandomOrder calls f once for every id in shuffled order and returns the average duration.
func callInRandomOrder(ids []string, f func(id string) error) (time.Duration, error) {
	shuffled := append([]string(nil), ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration time.Duration
	for _, id := range shuffled {
		start := time.Now()
		if err := f(id); err != nil {
			return 0, err
		}
		duration += time.Since(start)
	}
	return duration / time.Duration(len(shuffled)), nil
}
