package util

import (
	"strings"
	"testing"
)

func TestIsExternalVideoURL(t *testing.T) {
	valid := []string{
		"https://drive.google.com/file/d/1aB_c-3",
		"https://drive.google.com/open?id=xyz789",
		"https://drive.google.com/file/d/abc/view?usp=sharing",
	}
	for _, u := range valid {
		if !IsExternalVideoURL(u) {
			t.Errorf("IsExternalVideoURL(%q) = false, want true", u)
		}
	}

	invalid := []string{
		"",
		"/uploads/video.mp4",
		"http://drive.google.com/file/d/abc",
		"https://example.com/file/d/abc",
		"https://drive.google.com/other/abc",
	}
	for _, u := range invalid {
		if IsExternalVideoURL(u) {
			t.Errorf("IsExternalVideoURL(%q) = true, want false", u)
		}
	}
}

func TestIsAllowedUploadExtension(t *testing.T) {
	for _, name := range []string{"syllabus.pdf", "COVER.PNG", "doc.docx", "photo.jpeg"} {
		if !IsAllowedUploadExtension(name) {
			t.Errorf("IsAllowedUploadExtension(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"script.sh", "video.mp4", "archive.zip", "noext"} {
		if IsAllowedUploadExtension(name) {
			t.Errorf("IsAllowedUploadExtension(%q) = true, want false", name)
		}
	}
}

func TestNewAssetNameKeepsExtension(t *testing.T) {
	name := NewAssetName("My Report.PDF")
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("NewAssetName = %q, want .pdf suffix", name)
	}
	if name == NewAssetName("My Report.PDF") {
		t.Error("two generated names collide")
	}
}
