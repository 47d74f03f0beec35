// Package seed fills an empty database with the school's starting content.
package seed

import (
	"fmt"
	"log/slog"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/service"
	"gorm.io/gorm"
)

// Result 记录每个集合新增的行数，已有数据的集合为 0。
type Result map[string]int

// Run 逐个集合写入示例内容，已有数据的集合会被跳过，可以重复执行。
func Run(gdb *gorm.DB, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := Result{}

	steps := []struct {
		name  string
		model any
		fill  func(*gorm.DB) (int, error)
	}{
		{"programs", &db.Program{}, seedPrograms},
		{"faq", &db.FAQItem{}, seedFAQ},
		{"statistics", &db.Statistic{}, seedStatistics},
		{"contact_info", &db.ContactInfo{}, seedContactInfo},
		{"social_links", &db.SocialLink{}, seedSocialLinks},
		{"timeline", &db.TimelineEvent{}, seedTimeline},
		{"site_content", &db.SiteContent{}, seedSiteContent},
	}

	for _, step := range steps {
		var count int64
		if err := gdb.Model(step.model).Count(&count).Error; err != nil {
			return result, fmt.Errorf("count %s: %w", step.name, err)
		}
		if count > 0 {
			logger.Info("seed skipped, collection not empty", "collection", step.name, "rows", count)
			result[step.name] = 0
			continue
		}
		created, err := step.fill(gdb)
		if err != nil {
			return result, fmt.Errorf("seed %s: %w", step.name, err)
		}
		logger.Info("seed created", "collection", step.name, "rows", created)
		result[step.name] = created
	}
	return result, nil
}

func seedPrograms(gdb *gorm.DB) (int, error) {
	programs := []service.ProgramInput{
		{Title: "TIK - Teknologji Informacioni", Description: "Zhvillimi i aftësive në programim, rrjete kompjuterike dhe sistemet e informacionit.", Color: "accent-blue", ImageURL: "https://images.unsplash.com/photo-1517694712202-14dd9538aa97?w=400&h=300&fit=crop&auto=format"},
		{Title: "Ekonomi - Biznes", Description: "Përgatitja për menaxhim biznesi, kontabilitet dhe sipërmarrje.", Color: "accent-emerald", ImageURL: "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?w=400&h=300&fit=crop&auto=format"},
		{Title: "Hoteleri - Turizëm", Description: "Shërbime hotelerie, kuzhina profesionale dhe udhërrëfyes turistik.", Color: "accent-purple", ImageURL: "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=400&h=300&fit=crop&auto=format"},
		{Title: "Mekanikë", Description: "Prodhimi dhe riparimi i makinerive, torneria dhe saldimi.", Color: "accent-orange", ImageURL: "https://images.unsplash.com/photo-1581092921461-eab62e97a780?w=400&h=300&fit=crop&auto=format"},
		{Title: "Elektroteknikë", Description: "Instalime elektrike, automatizim dhe sistemet e kontrollit.", Color: "accent-blue", ImageURL: "https://images.unsplash.com/photo-1621905251189-08b45d6a269e?w=400&h=300&fit=crop&auto=format"},
		{Title: "Ndërtim", Description: "Teknikat e ndërtimit, leximi i projekteve dhe punime ndërtimore.", Color: "accent-emerald", ImageURL: "https://images.unsplash.com/photo-1504307651254-35680f356dfd?w=400&h=300&fit=crop&auto=format"},
	}
	svc := service.NewProgramService(gdb)
	for _, input := range programs {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(programs), nil
}

func seedFAQ(gdb *gorm.DB) (int, error) {
	items := []service.FAQInput{
		{Category: "general", Question: "Sa kushton viti shkollor?", Answer: "Shkolla është publike, pra falas. Nuk ka asnjë tarifë për regjistrimin apo vijimin e mësimeve."},
		{Category: "general", Question: "Sa vite zgjat shkolla?", Answer: "Shkolla zgjat 4 vite. Sistemet që ofrojmë janë të tipologjisë 2+1+1 dhe 2+2 vjeçare."},
		{Category: "programs", Question: "Çfarë drejtimesh ofroni?", Answer: "Shkolla ofron aktualisht 11 drejtime në nivelin e IV të KSHK-së dhe 1 drejtim në nivelin e V të KSHK-së (pas të mesmes)."},
		{Category: "programs", Question: "Si zhvillohet praktika profesionale?", Answer: "Praktika profesionale zhvillohet në shkollë dhe në biznes, në partneritet me mbi 275 biznese."},
		{Category: "career", Question: "A mund të ndjek universitetin pas përfundimit?", Answer: "Po. Diploma e Maturës Shtetërore Profesionale ju jep të drejtën të ndiqni studimet universitare."},
		{Category: "support", Question: "A ka konvikt shkolla?", Answer: "Po, shkolla ka konvikt dhe ju e përfitoni atë falas."},
		{Category: "admission", Question: "Si mund të regjistrohem?", Answer: "Regjistrimi bëhet përmes platformës eAlbania. Kontaktoni sekretarinë për ndihmë."},
	}
	svc := service.NewFAQService(gdb)
	for _, input := range items {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func seedStatistics(gdb *gorm.DB) (int, error) {
	stats := []service.StatisticInput{
		{StatKey: "students", Label: "Nxënës", Value: 850, Suffix: "+", Icon: "users"},
		{StatKey: "partners", Label: "Biznese partnere", Value: 275, Suffix: "+", Icon: "building"},
		{StatKey: "employment", Label: "Punësim", Value: 67, Suffix: "%", Icon: "briefcase"},
		{StatKey: "programs", Label: "Drejtime", Value: 12, Icon: "graduation-cap"},
	}
	svc := service.NewStatisticService(gdb)
	for _, input := range stats {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(stats), nil
}

func seedContactInfo(gdb *gorm.DB) (int, error) {
	cards := []service.ContactInfoInput{
		{InfoType: "address", Title: "Adresa", Details: []string{"Rruga Zogu i Parë", "Elbasan 3001, Shqipëri"}, Icon: "map-pin", Color: "accent-blue"},
		{InfoType: "phone", Title: "Telefon", Details: []string{"+355 68 333 71 71"}, Icon: "phone", Color: "accent-emerald"},
		{InfoType: "email", Title: "Email", Details: []string{"info@shpe.al"}, Icon: "mail", Color: "accent-purple"},
		{InfoType: "hours", Title: "Orari i Punës", Details: []string{"E Hënë - E Premte", "08:00 - 16:00"}, Icon: "clock", Color: "accent-orange"},
	}
	svc := service.NewContactInfoService(gdb)
	for _, input := range cards {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(cards), nil
}

func seedSocialLinks(gdb *gorm.DB) (int, error) {
	links := []service.SocialLinkInput{
		{Platform: "facebook", URL: "https://facebook.com"},
		{Platform: "instagram", URL: "https://instagram.com"},
	}
	svc := service.NewSocialLinkService(gdb)
	for _, input := range links {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(links), nil
}

func seedTimeline(gdb *gorm.DB) (int, error) {
	events := []service.TimelineInput{
		{Year: 1961, Title: "Themelimi i shkollës", Description: "Shkolla hap dyert si shkollë profesionale industriale.", IsMilestone: true},
		{Year: 2012, Title: "Laboratorët e rinj", Description: "Rikonstruktimi i laboratorëve për mekanikë dhe elektroteknikë."},
		{Year: 2020, Title: "Partneritetet me bizneset", Description: "Praktika profesionale shtrihet në mbi 200 biznese të qarkut.", IsMilestone: true},
	}
	svc := service.NewTimelineService(gdb)
	for _, input := range events {
		if _, err := svc.Create(input); err != nil {
			return 0, err
		}
	}
	return len(events), nil
}

func seedSiteContent(gdb *gorm.DB) (int, error) {
	sections := []service.SiteContentInput{
		{SectionKey: "hero_title", Content: "Shkolla Profesionale"},
		{SectionKey: "hero_description", Content: "Arsim profesional cilësor me praktikë në biznes dhe rrugë të hapur drejt punësimit."},
		{SectionKey: "about", Content: "Ne përgatisim nxënësit me aftësi praktike dhe njohuri teorike për tregun e punës.", ContentType: db.ContentTypeMarkdown},
	}
	svc := service.NewSiteContentService(gdb)
	for _, input := range sections {
		if _, err := svc.Upsert(input); err != nil {
			return 0, err
		}
	}
	return len(sections), nil
}
