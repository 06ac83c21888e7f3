// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BazaarBuddy")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "bazaarbuddy.log")
	viper.SetDefault("main.log.maxsize", 5)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.json", false)
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("target.processwindows", "TheBazaar.exe")
	viper.SetDefault("target.processdarwin", "The Bazaar")
	viper.SetDefault("target.windowtitle", "The Bazaar")
	viper.SetDefault("target.searchinterval", 1000*time.Millisecond)
	viper.SetDefault("target.captureinterval", 500*time.Millisecond)
	viper.SetDefault("target.acquiretimeout", 2500*time.Millisecond)
	viper.SetDefault("target.stopgrace", 3000*time.Millisecond)

	viper.SetDefault("capture.backend", "auto")
	viper.SetDefault("capture.saveframes", false)
	viper.SetDefault("capture.savepath", "frames/")

	viper.SetDefault("ocr.language", "eng")
	viper.SetDefault("ocr.confidencethreshold", 80)
	viper.SetDefault("ocr.tessdataprefix", "")

	viper.SetDefault("knowledge.datapath", "data/")
	viper.SetDefault("knowledge.cachettl", 30*time.Second)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "localhost:9100")
}
