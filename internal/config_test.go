package internal

import "testing"

func TestLoadConfigWithoutS3Settings(t *testing.T) {
	for _, k := range []string{
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET",
		"S3_ACCESS_KEY", "S3_ACCESS_KEY_ID",
		"S3_SECRET_ACCESS_KEY", "S3_SECRET_ACCESS_KEY_ID",
	} {
		t.Setenv(k, "")
	}

	// Tracker-only invocations never open the bucket, so loading must not
	// demand storage credentials.
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.ValidateS3(); err == nil {
		t.Fatal("ValidateS3 must fail while storage settings are empty")
	}
}

func TestValidateS3Complete(t *testing.T) {
	cfg := Config{
		S3Endpoint:  "https://storage.local:9000",
		S3Region:    "us-east-1",
		S3Bucket:    "media",
		S3AccessKey: "ak",
		S3SecretKey: "sk",
	}
	if err := cfg.ValidateS3(); err != nil {
		t.Fatalf("ValidateS3: %v", err)
	}
}
