package main

import "fmt"

// seedCatalog publishes the default module catalog. Seeding is a no-op when
// a catalog version already exists.
func (cli *commandLine) seedCatalog() error {
	cat, err := cli.catSvc.Seed("")
	if err != nil {
		return err
	}
	fmt.Printf("catalog at version %d with %d modules\n", cat.Version, len(cat.Modules))
	return nil
}
