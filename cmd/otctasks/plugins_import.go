package main

// Blank imports ensure plugin init() registration runs for the CLI binary.
import (
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/antiddosfipinfo"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/cesquotasinfo"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/dnszones"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/lbmemberinfo"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/natsnatinfo"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/rdsinstance"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/vpcpeeringinfo"
	_ "github.com/alexisbeaulieu97/otctasks/internal/plugins/vpcroute"
)
