package server

import (
	"go.uber.org/zap"

	"github.com/cloudpane/backend/internal/infrastructure/logging"
	"github.com/cloudpane/backend/internal/vfs"
)

// seedDemoItems populates the store with the demo content fresh installs
// show: a few folders, an assortment of files across kinds, and a couple
// of starred entries.
func seedDemoItems(store *vfs.Store, categories *vfs.Categories, logger *logging.Logger) {
	catByName := make(map[string]string)
	for _, cat := range categories.List() {
		catByName[cat.Name] = cat.ID
	}
	catID := func(name string) *string {
		if id, ok := catByName[name]; ok {
			return &id
		}
		return nil
	}

	docs, err := store.CreateFolder("Documents", nil)
	if err != nil {
		logger.Warn("demo seed failed", zap.Error(err))
		return
	}
	pics, _ := store.CreateFolder("Pictures", nil)
	work, _ := store.CreateFolder("Work Projects", &docs.ID)

	type leaf struct {
		name     string
		size     string
		category string
		parent   *string
		starred  bool
	}
	leaves := []leaf{
		{name: "quarterly-report.pdf", size: "2.4 MB", category: "Documents", parent: &docs.ID, starred: true},
		{name: "meeting-notes.docx", size: "340 KB", category: "Documents", parent: &docs.ID},
		{name: "roadmap.xlsx", size: "1.1 MB", category: "Documents", parent: &work.ID},
		{name: "vacation-photo.jpg", size: "3.8 MB", category: "Images", parent: &pics.ID, starred: true},
		{name: "team-offsite.png", size: "5.2 MB", category: "Images", parent: &pics.ID},
		{name: "demo-recording.mp4", size: "48 MB", category: "Videos"},
		{name: "standup-notes.mp3", size: "12 MB", category: "Audio"},
		{name: "deploy.sh", size: "4 KB", category: "Code", parent: &work.ID},
		{name: "release-v2.zip", size: "89 MB", category: "Archives"},
	}

	for _, l := range leaves {
		item, err := store.CreateFile(l.name, vfs.ParseSize(l.size), catID(l.category), l.parent)
		if err != nil {
			logger.Warn("demo seed failed", zap.String("name", l.name), zap.Error(err))
			continue
		}
		if l.starred {
			store.ToggleStar(item.ID)
		}
	}

	logger.Info("demo data seeded", zap.Int("items", store.Len()))
}
