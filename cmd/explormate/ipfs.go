package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/ipfs_proxy"
	"github.com/explormate/explormate-chain/ipfs_proxy/gateways"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_models"
	"github.com/explormate/explormate-chain/ipfs_proxy/ipfs_pinata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newIPFSCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipfs",
		Short: "Pin and fetch ExplorMate content on IPFS",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Check the Pinata credentials and round-trip a sample profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runIPFSTest(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload-file <path>",
		Short: "Pin a file and print its content id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			impl, err := ipfs_proxy.New(cli.conf)
			if err != nil {
				return err
			}
			defer impl.Stop()

			hash, err := ipfs_proxy.PutFile(cli.requestContext(cmd), impl, args[0])
			if err != nil {
				return err
			}
			cli.printPinned(cmd.OutOrStdout(), hash)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload-json <file|->",
		Short: "Pin a JSON document read from a file or standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var document interface{}
			if err = json.Unmarshal(raw, &document); err != nil {
				return errors.Wrap(err, "input is not valid JSON")
			}

			impl, err := ipfs_proxy.New(cli.conf)
			if err != nil {
				return err
			}
			defer impl.Stop()

			hash, err := ipfs_proxy.PutJSON(cli.requestContext(cmd), impl, document)
			if err != nil {
				return err
			}
			cli.printPinned(cmd.OutOrStdout(), hash)
			return nil
		},
	})

	profile := ipfs_models.UserProfile{}
	extra := map[string]string{}
	uploadProfileCmd := &cobra.Command{
		Use:   "upload-profile",
		Short: "Pin a user profile document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profile
			if len(extra) > 0 {
				p.Extra = make(map[string]interface{}, len(extra))
				for k, v := range extra {
					p.Extra[k] = v
				}
			}

			impl, err := ipfs_proxy.New(cli.conf)
			if err != nil {
				return err
			}
			defer impl.Stop()

			hash, err := ipfs_proxy.PutUserProfile(cli.requestContext(cmd), impl, p)
			if err != nil {
				return err
			}
			cli.printPinned(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	uploadProfileCmd.Flags().StringVar(&profile.Name, "name", "", "Display name")
	uploadProfileCmd.Flags().StringVar(&profile.Email, "email", "", "Contact email")
	uploadProfileCmd.Flags().StringVar(&profile.Bio, "bio", "", "Short biography")
	uploadProfileCmd.Flags().StringVar(&profile.Experience, "experience", "", "Guiding experience")
	uploadProfileCmd.Flags().StringSliceVar(&profile.Certifications, "certification", nil, "A certification held (repeatable)")
	uploadProfileCmd.Flags().StringToStringVar(&extra, "extra", nil, "Additional key=value fields")
	_ = uploadProfileCmd.MarkFlagRequired("name")
	_ = uploadProfileCmd.MarkFlagRequired("email")
	cmd.AddCommand(uploadProfileCmd)

	var outputPath string
	getCmd := &cobra.Command{
		Use:   "get <cid>",
		Short: "Fetch content from the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			impl, err := ipfs_proxy.New(cli.conf)
			if err != nil {
				return err
			}
			defer impl.Stop()

			obj, err := impl.GetObject(cli.requestContext(cmd), args[0])
			if err != nil {
				return err
			}
			defer obj.Data.Close()
			data, err := io.ReadAll(obj.Data)
			if err != nil {
				return errors.Wrap(err, "reading "+args[0])
			}

			if outputPath != "" {
				if err = os.WriteFile(outputPath, data, 0644); err != nil {
					return err
				}
				printField(cmd.OutOrStderr(), "Saved:", fmt.Sprintf("%s (%s)", outputPath, humanize.Bytes(uint64(len(data)))))
				return nil
			}
			return writeContent(cmd.OutOrStdout(), data)
		},
	}
	getCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the content to a file instead of standard output")
	cmd.AddCommand(getCmd)

	var gatewayName string
	urlCmd := &cobra.Command{
		Use:         "url <cid>",
		Short:       "Print the gateway URL for a content id",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, ok := gateways.Parse(gatewayName)
			if !ok {
				known := make([]string, 0)
				for _, g := range gateways.Known() {
					known = append(known, string(g))
				}
				return errors.Errorf("unknown gateway %q, expected one of %s", gatewayName, strings.Join(known, ", "))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), gateways.GatewayURL(args[0], gateway))
			return err
		},
	}
	urlCmd.Flags().StringVar(&gatewayName, "gateway", string(gateways.Pinata), "Gateway to use")
	cmd.AddCommand(urlCmd)

	return cmd
}

func (cli *CLI) runIPFSTest(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	ctx := cli.requestContext(cmd)

	client := ipfs_pinata.New(cli.conf.Pinata)
	defer client.Stop()

	_, _ = fmt.Fprintln(out, "Testing IPFS Service...")
	if !client.TestAuthentication(ctx) {
		printField(out, "Authentication:", red("FAILED"))
		return nil
	}
	printField(out, "Authentication:", green("SUCCESS"))

	testProfile := ipfs_models.UserProfile{
		Name:  "John Doe Tourist",
		Email: "john@explormate.com",
		Bio:   "Adventure seeker and nature lover",
		Extra: map[string]interface{}{
			"languages":            []string{"English", "Indonesian"},
			"favoriteDestinations": []string{"Bali", "Yogyakarta", "Raja Ampat"},
		},
	}
	hash, err := client.UploadUserProfile(ctx, testProfile)
	if err != nil {
		printField(out, "IPFS test failed:", red(err.Error()))
		return err
	}
	printField(out, "Profile uploaded to IPFS:", hash)

	data, err := client.GetData(ctx, hash)
	if err != nil {
		printField(out, "IPFS test failed:", red(err.Error()))
		return err
	}
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	printField(out, "Retrieved data:", string(pretty))
	printField(out, "IPFS URL:", client.GatewayUrlFor(hash))
	return nil
}

func (cli *CLI) printPinned(out io.Writer, hash string) {
	printField(out, "IPFS hash:", hash)
	gatewayUrl := gateways.FormatIPFSUrl(hash)
	if cli.conf.IPFS.Backend != config.BackendLocal {
		gatewayUrl = ipfs_pinata.New(cli.conf.Pinata).GatewayUrlFor(hash)
	}
	printField(out, "IPFS URL:", gatewayUrl)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return b, errors.Wrap(err, "reading standard input")
	}
	b, err := os.ReadFile(name)
	return b, errors.Wrap(err, "reading "+name)
}

// writeContent pretty prints JSON and passes anything else through untouched.
func writeContent(out io.Writer, data []byte) error {
	if json.Valid(data) {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, data, "", "  "); err == nil {
			buf.WriteByte('\n')
			_, err = out.Write(buf.Bytes())
			return err
		}
	}
	_, err := out.Write(data)
	return err
}
