package cmd

import (
	"fmt"
	"log"

	"tunedeck/config"
	"tunedeck/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO connection",
	Long:  `Verify that the object store is reachable and that the media bucket exists, creating it if needed.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Checking MinIO connection...")

		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		s, err := storage.NewMinioStorage(cfg)
		if err != nil {
			log.Fatalf("Unable to connect to MinIO: %v", err)
		}

		fmt.Printf("MinIO connection OK, bucket %q ready.\n", s.Bucket())
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
